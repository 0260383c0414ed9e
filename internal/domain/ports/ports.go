// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, never on concrete model clients,
// databases or filesystems. Adapters implement these interfaces.
package ports

import (
	"context"
	"io/fs"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// ChatService is the single seam to a chat-completion model.
// Implementations perform no retries; transport failures wrap entities.ErrOracleTransport.
type ChatService interface {
	// Chat sends an ordered list of messages and returns the completion text.
	Chat(ctx context.Context, req entities.ChatRequest) (string, error)
}

// StreamingChatService is implemented by transports that can stream tokens.
type StreamingChatService interface {
	ChatService

	// ChatStream returns a channel of tokens; the last one has Done set.
	ChatStream(ctx context.Context, req entities.ChatRequest) (<-chan StreamToken, error)
}

// StreamToken represents a single token in a streaming completion.
type StreamToken struct {
	Content string
	Done    bool
	Error   error
}

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex persists and queries embedded documents grouped in named collections.
// It is a derived index: every document also exists as a filesystem record.
type VectorIndex interface {
	// Upsert inserts or replaces documents by id.
	Upsert(ctx context.Context, collection string, docs []entities.IndexedDocument) error

	// Query returns up to limit nearest documents, ascending by distance.
	// Every key in where must match the document metadata exactly.
	Query(ctx context.Context, collection string, embedding []float32, where map[string]string, limit int) ([]entities.IndexHit, error)

	// Delete removes one document.
	Delete(ctx context.Context, collection, id string) error

	// Clear removes every document of a collection.
	Clear(ctx context.Context, collection string) error
}

// Workspace inspects and mutates project directories on disk.
type Workspace interface {
	// DetectProjectType classifies a project by its marker files.
	DetectProjectType(root string) string

	// ListFiles enumerates project files relative to root, skipping vendor
	// and build directories, capped at limit.
	ListFiles(root string, limit int) ([]string, error)

	// Dependencies returns declared dependencies for supported project types.
	Dependencies(root, projectType string) map[string][]string

	// RelevantFiles picks source files worth showing to the oracle.
	RelevantFiles(root string, limit int) []string

	// DetectLanguage names the language of a file for fenced prompts.
	DetectLanguage(path string) string

	// VCS reports version-control state, nil when it cannot be determined.
	VCS(root string) *entities.VCSInfo

	ReadFile(path string) (string, error)
	WriteFile(path, content string, perm fs.FileMode) error
}

// BackupService snapshots files before they are mutated.
type BackupService interface {
	// BackupDir copies a whole project tree and returns the copy's path.
	BackupDir(root string) (string, error)

	// BackupFile copies one file and returns the copy's path.
	BackupFile(path string) (string, error)
}

// Deployer ships a built project somewhere. Method is one of ssh, docker, cloud, ftp.
type Deployer interface {
	Deploy(ctx context.Context, projectPath, method string, config map[string]any) (*entities.DeployResult, error)
}

// FileWatcher monitors a directory tree for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
