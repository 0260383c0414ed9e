package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// Vector collection names.
const (
	CollectionTemplates = "templates"
	CollectionPatterns  = "patterns"
	CollectionSolutions = "solutions"
)

// Records is the read side of the filesystem store, used by retrievers to
// scan or hydrate authoritative records.
type Records interface {
	ListTemplates(language string) ([]entities.Template, error)
	GetTemplate(id string) (*entities.Template, error)
	GetSolution(id string) (*entities.Solution, error)
}

// Retriever is the search strategy of a Store.
type Retriever interface {
	Name() string
	Semantic() bool
	IndexTemplate(ctx context.Context, t entities.Template) error
	IndexSolution(ctx context.Context, s entities.Solution) error
	// IndexTemplates and IndexSolutions index many records with batched embedding calls.
	IndexTemplates(ctx context.Context, ts []entities.Template) error
	IndexSolutions(ctx context.Context, ss []entities.Solution) error
	// RemoveTemplate drops a template id that no longer has a record on disk.
	RemoveTemplate(ctx context.Context, id string) error
	SearchTemplates(ctx context.Context, records Records, query, language string, limit int) ([]entities.Template, error)
	SearchSolutions(ctx context.Context, records Records, query string, limit int) ([]entities.Solution, error)
	// Reset drops every derived index entry.
	Reset(ctx context.Context) error
}

// KeywordRetriever scans the filesystem with case-insensitive substring matching.
type KeywordRetriever struct{}

func (KeywordRetriever) Name() string   { return "keyword" }
func (KeywordRetriever) Semantic() bool { return false }

func (KeywordRetriever) IndexTemplate(context.Context, entities.Template) error { return nil }
func (KeywordRetriever) IndexSolution(context.Context, entities.Solution) error { return nil }
func (KeywordRetriever) Reset(context.Context) error                            { return nil }
func (KeywordRetriever) RemoveTemplate(context.Context, string) error           { return nil }

func (KeywordRetriever) IndexTemplates(context.Context, []entities.Template) error { return nil }
func (KeywordRetriever) IndexSolutions(context.Context, []entities.Solution) error { return nil }

// SearchTemplates matches query against name, description and tags, in file order.
func (KeywordRetriever) SearchTemplates(_ context.Context, records Records, query, language string, limit int) ([]entities.Template, error) {
	all, err := records.ListTemplates(language)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []entities.Template
	for _, t := range all {
		if limit > 0 && len(out) >= limit {
			break
		}
		if matchesTemplate(t, q) {
			out = append(out, t)
		}
	}
	return out, nil
}

func matchesTemplate(t entities.Template, q string) bool {
	if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// SearchSolutions always returns nothing: solutions are only searchable semantically.
func (KeywordRetriever) SearchSolutions(context.Context, Records, string, int) ([]entities.Solution, error) {
	return nil, nil
}

// VectorRetriever embeds documents and queries a VectorIndex.
type VectorRetriever struct {
	embedder ports.EmbeddingService
	index    ports.VectorIndex
}

// NewVectorRetriever creates a semantic retriever.
func NewVectorRetriever(embedder ports.EmbeddingService, index ports.VectorIndex) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, index: index}
}

func (r *VectorRetriever) Name() string   { return "vector" }
func (r *VectorRetriever) Semantic() bool { return true }

func templateDocument(t entities.Template) string {
	return fmt.Sprintf("%s: %s\n\n%s", t.Name, t.Description, t.Code)
}

func solutionDocument(s entities.Solution) string {
	return fmt.Sprintf("Problème: %s\n\nSolution: %s\n\nContexte: %s", s.Problem, s.Solution, s.Context)
}

// embedBatchSize bounds how many documents go into one EmbedBatch call.
const embedBatchSize = 64

func templateEntry(t entities.Template) entities.IndexedDocument {
	return entities.IndexedDocument{
		ID:       t.ID,
		Document: templateDocument(t),
		Metadata: map[string]string{
			"name":     t.Name,
			"language": t.Language,
			"tags":     strings.Join(t.Tags, ","),
		},
	}
}

func solutionEntry(s entities.Solution) entities.IndexedDocument {
	return entities.IndexedDocument{
		ID:       s.ID,
		Document: solutionDocument(s),
		Metadata: map[string]string{"tags": strings.Join(s.Tags, ",")},
	}
}

func (r *VectorRetriever) upsert(ctx context.Context, collection string, doc entities.IndexedDocument) error {
	emb, err := r.embedder.Embed(ctx, doc.Document)
	if err != nil {
		return fmt.Errorf("embedding %s: %w", doc.ID, err)
	}
	doc.Embedding = emb
	return r.index.Upsert(ctx, collection, []entities.IndexedDocument{doc})
}

// upsertBatch embeds docs in chunks of embedBatchSize and upserts each chunk.
func (r *VectorRetriever) upsertBatch(ctx context.Context, collection string, docs []entities.IndexedDocument) error {
	for start := 0; start < len(docs); start += embedBatchSize {
		chunk := docs[start:min(start+embedBatchSize, len(docs))]
		texts := make([]string, len(chunk))
		for i, d := range chunk {
			texts[i] = d.Document
		}
		embs, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding %s batch: %w", collection, err)
		}
		if len(embs) != len(chunk) {
			return fmt.Errorf("embedding %s batch: got %d vectors for %d documents", collection, len(embs), len(chunk))
		}
		for i := range chunk {
			chunk[i].Embedding = embs[i]
		}
		if err := r.index.Upsert(ctx, collection, chunk); err != nil {
			return fmt.Errorf("upserting %s batch: %w", collection, err)
		}
	}
	return nil
}

// IndexTemplate embeds and stores a template.
func (r *VectorRetriever) IndexTemplate(ctx context.Context, t entities.Template) error {
	return r.upsert(ctx, CollectionTemplates, templateEntry(t))
}

// IndexSolution embeds and stores a solution.
func (r *VectorRetriever) IndexSolution(ctx context.Context, s entities.Solution) error {
	return r.upsert(ctx, CollectionSolutions, solutionEntry(s))
}

func (r *VectorRetriever) IndexTemplates(ctx context.Context, ts []entities.Template) error {
	docs := make([]entities.IndexedDocument, len(ts))
	for i, t := range ts {
		docs[i] = templateEntry(t)
	}
	return r.upsertBatch(ctx, CollectionTemplates, docs)
}

func (r *VectorRetriever) IndexSolutions(ctx context.Context, ss []entities.Solution) error {
	docs := make([]entities.IndexedDocument, len(ss))
	for i, s := range ss {
		docs[i] = solutionEntry(s)
	}
	return r.upsertBatch(ctx, CollectionSolutions, docs)
}

// RemoveTemplate deletes one template from the index.
func (r *VectorRetriever) RemoveTemplate(ctx context.Context, id string) error {
	return r.index.Delete(ctx, CollectionTemplates, id)
}

// SearchTemplates returns nearest templates, hydrated from disk. Hits whose
// record is gone are dropped.
func (r *VectorRetriever) SearchTemplates(ctx context.Context, records Records, query, language string, limit int) ([]entities.Template, error) {
	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	var where map[string]string
	if language != "" {
		where = map[string]string{"language": language}
	}
	hits, err := r.index.Query(ctx, CollectionTemplates, emb, where, limit)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}

	out := make([]entities.Template, 0, len(hits))
	for _, hit := range hits {
		t, err := records.GetTemplate(hit.ID)
		if err != nil {
			continue
		}
		t.Score = hit.Distance
		out = append(out, *t)
	}
	return out, nil
}

// SearchSolutions returns nearest solutions. Hits whose file is gone are dropped.
func (r *VectorRetriever) SearchSolutions(ctx context.Context, records Records, query string, limit int) ([]entities.Solution, error) {
	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	hits, err := r.index.Query(ctx, CollectionSolutions, emb, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("querying solutions: %w", err)
	}

	out := make([]entities.Solution, 0, len(hits))
	for _, hit := range hits {
		sol, err := records.GetSolution(hit.ID)
		if err != nil {
			continue
		}
		sol.Score = hit.Distance
		out = append(out, *sol)
	}
	return out, nil
}

// Reset clears every collection.
func (r *VectorRetriever) Reset(ctx context.Context) error {
	for _, c := range []string{CollectionTemplates, CollectionPatterns, CollectionSolutions} {
		if err := r.index.Clear(ctx, c); err != nil {
			return fmt.Errorf("clearing %s: %w", c, err)
		}
	}
	return nil
}
