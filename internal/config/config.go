// Package config loads the agent configuration from defaults, a YAML file
// and JARVIS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "jarvis.yaml"

// Config represents the complete agent configuration.
type Config struct {
	LLM           LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Security      SecurityConfig  `mapstructure:"security" yaml:"security"`
	KnowledgeBase KnowledgeConfig `mapstructure:"knowledge_base" yaml:"knowledge_base"`
	Modules       ModulesConfig   `mapstructure:"modules" yaml:"modules"`
	Logging       LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Server        ServerConfig    `mapstructure:"server" yaml:"server"`
	ProjectsDir   string          `mapstructure:"projects_dir" yaml:"projects_dir"`

	// BaseDir is the directory relative paths resolve against.
	BaseDir string `mapstructure:"-" yaml:"-"`
}

// LLMConfig selects the chat-completion provider.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     int     `mapstructure:"timeout" yaml:"timeout"` // seconds
}

// SecurityConfig holds the filesystem safety policy.
type SecurityConfig struct {
	AllowedDirectories       []string `mapstructure:"allowed_directories" yaml:"allowed_directories"`
	BackupBeforeModification bool     `mapstructure:"backup_before_modification" yaml:"backup_before_modification"`
	SandboxMode              bool     `mapstructure:"sandbox_mode" yaml:"sandbox_mode"`
	BackupDir                string   `mapstructure:"backup_dir" yaml:"backup_dir,omitempty"`
}

// KnowledgeConfig locates the knowledge base and its optional vector index.
type KnowledgeConfig struct {
	Path            string          `mapstructure:"path" yaml:"path"`
	VectorDBEnabled bool            `mapstructure:"vector_db_enabled" yaml:"vector_db_enabled"`
	VectorStore     string          `mapstructure:"vector_store" yaml:"vector_store"` // sqlite or memory
	Embedding       EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`
}

// EmbeddingConfig selects the embedder used by the vector index.
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key,omitempty"`
}

// ModulesConfig toggles pipelines on or off.
type ModulesConfig struct {
	Builder  bool `mapstructure:"builder" yaml:"builder"`
	Fixer    bool `mapstructure:"fixer" yaml:"fixer"`
	Learner  bool `mapstructure:"learner" yaml:"learner"`
	Deployer bool `mapstructure:"deployer" yaml:"deployer"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	File    string `mapstructure:"file" yaml:"file,omitempty"`
	Console bool   `mapstructure:"console" yaml:"console"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

var validProviders = map[string]bool{"openai": true, "ollama": true}
var validEmbedders = map[string]bool{"ollama": true, "genai": true}
var validVectorStores = map[string]bool{"sqlite": true, "memory": true}

// Load reads configuration. An empty path looks for jarvis.yaml in the
// working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("JARVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	baseDir, _ := os.Getwd()
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("%w: %s", entities.ErrConfigNotFound, abs)
		}
		v.SetConfigFile(abs)
		baseDir = filepath.Dir(abs)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.BaseDir = baseDir
	cfg.resolvePaths()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4.1-mini")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4000)
	v.SetDefault("llm.timeout", 300)

	v.SetDefault("security.allowed_directories", []string{"."})
	v.SetDefault("security.backup_before_modification", true)
	v.SetDefault("security.sandbox_mode", true)
	v.SetDefault("security.backup_dir", "")

	v.SetDefault("knowledge_base.path", "./knowledge_base")
	v.SetDefault("knowledge_base.vector_db_enabled", true)
	v.SetDefault("knowledge_base.vector_store", "sqlite")
	v.SetDefault("knowledge_base.embedding.provider", "ollama")
	v.SetDefault("knowledge_base.embedding.model", "nomic-embed-text")
	v.SetDefault("knowledge_base.embedding.endpoint", "")
	v.SetDefault("knowledge_base.embedding.api_key", "")

	v.SetDefault("modules.builder", true)
	v.SetDefault("modules.fixer", true)
	v.SetDefault("modules.learner", true)
	v.SetDefault("modules.deployer", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.console", true)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("projects_dir", "./projects")
}

// Template returns the defaults with paths left relative, as written by `config init`.
func Template() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Default returns the configuration used when nothing is configured,
// with paths resolved against the working directory.
func Default() *Config {
	cfg := Template()
	cfg.BaseDir, _ = os.Getwd()
	cfg.resolvePaths()
	return cfg
}

func (c *Config) resolvePaths() {
	c.KnowledgeBase.Path = c.Resolve(c.KnowledgeBase.Path)
	c.ProjectsDir = c.Resolve(c.ProjectsDir)
	if c.Security.BackupDir != "" {
		c.Security.BackupDir = c.Resolve(c.Security.BackupDir)
	}
	if c.Logging.File != "" {
		c.Logging.File = c.Resolve(c.Logging.File)
	}
	for i, dir := range c.Security.AllowedDirectories {
		c.Security.AllowedDirectories[i] = c.Resolve(dir)
	}
}

// Resolve makes p absolute relative to BaseDir. "~" expands to the home directory.
func (c *Config) Resolve(p string) string {
	if p == "" {
		return p
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.BaseDir, p)
	}
	return filepath.Clean(p)
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm.provider %q (must be openai or ollama)", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.KnowledgeBase.Path == "" {
		return fmt.Errorf("knowledge_base.path is required")
	}
	if c.KnowledgeBase.VectorDBEnabled && !validEmbedders[c.KnowledgeBase.Embedding.Provider] {
		return fmt.Errorf("invalid knowledge_base.embedding.provider %q (must be ollama or genai)",
			c.KnowledgeBase.Embedding.Provider)
	}
	if c.KnowledgeBase.VectorDBEnabled && !validVectorStores[c.KnowledgeBase.VectorStore] {
		return fmt.Errorf("invalid knowledge_base.vector_store %q (must be sqlite or memory)",
			c.KnowledgeBase.VectorStore)
	}
	if len(c.Security.AllowedDirectories) == 0 {
		return fmt.Errorf("security.allowed_directories must not be empty")
	}
	return nil
}

// WriteFile serializes the configuration as YAML. Existing files are not overwritten.
func (c *Config) WriteFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating config dir: %v", entities.ErrFileSystem, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing config: %v", entities.ErrFileSystem, err)
	}
	return nil
}
