package entities

// Template is a reusable code snippet kept in the knowledge base.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"created_at"`
	Score       float64  `json:"score,omitempty"` // distance, set by vector search only
}

// Solution is a problem/solution pair kept in the knowledge base.
type Solution struct {
	ID        string   `json:"id"`
	Problem   string   `json:"problem"`
	Solution  string   `json:"solution"`
	Context   string   `json:"context"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	Score     float64  `json:"score,omitempty"`
}

// ProjectRecord is the metadata of one persisted build.
// The artifact tree lives in a sibling directory named after ID.
type ProjectRecord struct {
	ID          string         `json:"id"`
	ProjectName string         `json:"project_name"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   string         `json:"created_at"`
}

// IndexedDocument is what the vector index stores for a record.
type IndexedDocument struct {
	ID        string
	Document  string
	Metadata  map[string]string
	Embedding []float32
}

// IndexHit is a nearest-neighbour match. Lower Distance is closer.
type IndexHit struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float64
}
