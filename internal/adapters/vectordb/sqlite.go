// Package vectordb provides vector index adapters.
// Both implement ports.VectorIndex with brute-force cosine distance.
package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// SQLiteIndex implements ports.VectorIndex with SQLite persistence.
// Embeddings are stored as JSON and scored in process.
type SQLiteIndex struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteIndex opens (or creates) <dataPath>/vectors.db.
func NewSQLiteIndex(dataPath string) (*SQLiteIndex, error) {
	if dataPath == "" {
		dataPath = "./data"
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "vectors.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &SQLiteIndex{db: db}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return idx, nil
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		document TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		embedding BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or replaces documents by id.
func (s *SQLiteIndex) Upsert(ctx context.Context, collection string, docs []entities.IndexedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO documents (collection, id, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		embeddingJSON, err := json.Marshal(doc.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, collection, doc.ID, doc.Document, string(metadataJSON), embeddingJSON); err != nil {
			return fmt.Errorf("inserting %s: %w", doc.ID, err)
		}
	}

	return tx.Commit()
}

// Query returns the nearest documents of a collection.
func (s *SQLiteIndex) Query(ctx context.Context, collection string, embedding []float32, where map[string]string, limit int) ([]entities.IndexHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, metadata, embedding
		FROM documents
		WHERE collection = ?
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var hits []entities.IndexHit
	for rows.Next() {
		var hit entities.IndexHit
		var metadataJSON string
		var embeddingJSON []byte

		if err := rows.Scan(&hit.ID, &hit.Document, &metadataJSON, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		var vec []float32
		if err := json.Unmarshal(embeddingJSON, &vec); err != nil {
			continue // skip corrupted embeddings
		}
		if err := json.Unmarshal([]byte(metadataJSON), &hit.Metadata); err != nil {
			continue
		}
		if !matchesWhere(hit.Metadata, where) {
			continue
		}

		hit.Distance = cosineDistance(embedding, vec)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return rank(hits, limit), nil
}

// Delete removes one document.
func (s *SQLiteIndex) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	return err
}

// Clear removes every document of a collection.
func (s *SQLiteIndex) Clear(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", collection)
	return err
}

// Count returns the number of documents in a collection.
func (s *SQLiteIndex) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE collection = ?", collection).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}
