package vectordb

import (
	"context"
	"sync"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// InMemoryIndex is a ports.VectorIndex kept in process memory.
// Used by tests and when no persistent index is wanted.
type InMemoryIndex struct {
	mu          sync.RWMutex
	collections map[string]map[string]entities.IndexedDocument // collection -> id -> doc
}

// NewInMemoryIndex creates an empty index.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{
		collections: make(map[string]map[string]entities.IndexedDocument),
	}
}

// Upsert inserts or replaces documents by id.
func (s *InMemoryIndex) Upsert(ctx context.Context, collection string, docs []entities.IndexedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string]entities.IndexedDocument)
		s.collections[collection] = c
	}
	for _, doc := range docs {
		c[doc.ID] = doc
	}
	return nil
}

// Query returns the nearest documents of a collection.
func (s *InMemoryIndex) Query(ctx context.Context, collection string, embedding []float32, where map[string]string, limit int) ([]entities.IndexHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []entities.IndexHit
	for _, doc := range s.collections[collection] {
		if !matchesWhere(doc.Metadata, where) {
			continue
		}
		hits = append(hits, entities.IndexHit{
			ID:       doc.ID,
			Document: doc.Document,
			Metadata: doc.Metadata,
			Distance: cosineDistance(embedding, doc.Embedding),
		})
	}
	return rank(hits, limit), nil
}

// Delete removes one document.
func (s *InMemoryIndex) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

// Clear removes every document of a collection.
func (s *InMemoryIndex) Clear(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, collection)
	return nil
}
