// Package app is the composition root: it turns a Config into a wired Agent.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/0xcro3dile/jarvis-go/internal/adapters/embedding"
	"github.com/0xcro3dile/jarvis-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/jarvis-go/internal/adapters/llm"
	"github.com/0xcro3dile/jarvis-go/internal/adapters/vectordb"
	"github.com/0xcro3dile/jarvis-go/internal/adapters/workspace"
	"github.com/0xcro3dile/jarvis-go/internal/config"
	"github.com/0xcro3dile/jarvis-go/internal/domain/knowledge"
	"github.com/0xcro3dile/jarvis-go/internal/domain/oracle"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
	"github.com/0xcro3dile/jarvis-go/internal/domain/safety"
	"github.com/0xcro3dile/jarvis-go/internal/domain/usecases"
	"github.com/0xcro3dile/jarvis-go/internal/logging"
)

// vectorDir holds the SQLite vector index below the knowledge base.
const vectorDir = "vector_db"

// askContextLimit is how many stored solutions are folded into a question.
const askContextLimit = 3

// Options override adapters that would otherwise be built from the config.
type Options struct {
	Chat     ports.ChatService
	Embedder ports.EmbeddingService
	Deployer ports.Deployer
	Logger   *logging.Logger
}

// App holds the wired agent and the resources that must be released.
type App struct {
	Config *config.Config
	Agent  *usecases.Agent
	Store  *knowledge.Store
	Logger *logging.Logger

	index     *vectordb.SQLiteIndex
	warmup    bool
	ownLogger bool
}

// New wires every component from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{Config: cfg, Logger: opts.Logger}
	if a.Logger == nil {
		l, err := logging.New(cfg.Logging)
		if err != nil {
			return nil, err
		}
		a.Logger = l
		a.ownLogger = true
	}
	log := a.Logger.Component("app")

	chat := opts.Chat
	if chat == nil {
		c, err := llm.New(cfg.LLM, a.Logger.Component("llm"))
		if err != nil {
			a.Close()
			return nil, err
		}
		chat = c
	}

	retriever, err := a.retriever(ctx, opts.Embedder)
	if err != nil {
		a.Close()
		return nil, err
	}

	store, err := knowledge.New(cfg.KnowledgeBase.Path, retriever, a.Logger.Zerolog())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	// The in-memory index starts empty; fill it from the records on disk.
	if a.warmup {
		if _, err := store.Reindex(ctx); err != nil {
			log.Warn().Err(err).Msg("initial reindex failed")
		}
	}

	o := oracle.New(chat, a.Logger.Zerolog())
	ws := workspace.NewLocal(a.Logger.Zerolog())
	guard := safety.NewGuard(cfg.Security.AllowedDirectories)

	backups := workspace.NewBackups(cfg.Security.BackupDir)

	var modules usecases.AgentModules
	if cfg.Modules.Builder {
		modules.Builder = usecases.NewBuilder(o, ws, backups, store, guard,
			cfg.Security.BackupBeforeModification, cfg.ProjectsDir, a.Logger.Zerolog())
	}
	if cfg.Modules.Fixer {
		modules.Fixer = usecases.NewFixer(o, ws, backups, store, guard,
			cfg.Security.BackupBeforeModification, a.Logger.Zerolog())
	}
	if cfg.Modules.Learner {
		modules.Learner = usecases.NewLearnUseCase(store, a.Logger.Zerolog())
	}
	if cfg.Modules.Deployer {
		if opts.Deployer == nil {
			log.Warn().Msg("deployer module enabled but no deployer is available")
		}
		modules.Deployer = opts.Deployer
	}

	asker := usecases.NewAskUseCase(o, store, askContextLimit, a.Logger.Zerolog())
	a.Agent = usecases.NewAgent(asker, store, modules, a.Logger.Zerolog())

	log.Info().
		Str("llm", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Bool("semantic", store.Semantic()).
		Bool("sandbox_mode", cfg.Security.SandboxMode).
		Strs("allowed_directories", guard.Roots()).
		Msg("agent ready")
	return a, nil
}

func (a *App) retriever(ctx context.Context, embedder ports.EmbeddingService) (knowledge.Retriever, error) {
	kb := a.Config.KnowledgeBase
	if !kb.VectorDBEnabled {
		return knowledge.KeywordRetriever{}, nil
	}

	if embedder == nil {
		e, err := embedding.New(ctx, kb.Embedding, a.Logger.Component("embedding"))
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
		embedder = e
	}

	if kb.VectorStore == "memory" {
		a.warmup = true
		return knowledge.NewVectorRetriever(embedder, vectordb.NewInMemoryIndex()), nil
	}

	index, err := vectordb.NewSQLiteIndex(filepath.Join(kb.Path, vectorDir))
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}
	a.index = index
	return knowledge.NewVectorRetriever(embedder, index), nil
}

// NewWatcher returns a watcher over knowledge-base records, for Store.Watch.
func (a *App) NewWatcher() (ports.FileWatcher, error) {
	return filewatcher.NewFSNotifyWatcher([]string{".json"}, a.Logger.Component("filewatcher"))
}

// Close releases the vector index and the log file.
func (a *App) Close() error {
	var errs []error
	if a.index != nil {
		errs = append(errs, a.index.Close())
	}
	if a.ownLogger && a.Logger != nil {
		errs = append(errs, a.Logger.Close())
	}
	return errors.Join(errs...)
}
