// Package workspace provides filesystem adapters for project introspection,
// file mutation and backups.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// Project types reported by DetectProjectType.
const (
	TypeNodeJS     = "nodejs"
	TypePython     = "python"
	TypeJava       = "java"
	TypeRust       = "rust"
	TypeGo         = "go"
	TypeWebStatic  = "web_static"
	TypeUnknown    = "unknown"
	DefaultMaxList = 100
)

var ignoredDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	".git":         true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
}

var ignoredExts = map[string]bool{
	".pyc": true, ".pyo": true, ".so": true, ".dll": true,
	".dylib": true, ".exe": true, ".o": true, ".a": true,
}

// markers are checked in order; the first present file decides the type.
var markers = []struct {
	files []string
	kind  string
}{
	{[]string{"package.json"}, TypeNodeJS},
	{[]string{"requirements.txt", "setup.py"}, TypePython},
	{[]string{"pom.xml"}, TypeJava},
	{[]string{"Cargo.toml"}, TypeRust},
	{[]string{"go.mod"}, TypeGo},
	{[]string{"index.html", "index.htm"}, TypeWebStatic},
}

// relevantExts lists the extensions shown to the oracle, in priority order.
var relevantExts = []string{".py", ".js", ".ts", ".html"}

// Local implements ports.Workspace on the local filesystem.
type Local struct {
	logger zerolog.Logger
}

// NewLocal creates a Local workspace.
func NewLocal(logger zerolog.Logger) *Local {
	return &Local{logger: logger.With().Str("component", "workspace").Logger()}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DetectProjectType classifies root by marker files.
func (l *Local) DetectProjectType(root string) string {
	for _, m := range markers {
		for _, f := range m.files {
			if exists(filepath.Join(root, f)) {
				return m.kind
			}
		}
	}
	return TypeUnknown
}

// walk visits regular files below root, skipping ignored directories.
// fn returns false to stop the walk.
func walk(root string, fn func(rel string) bool) error {
	stop := errors.New("stop")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != root && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if !fn(filepath.ToSlash(rel)) {
			return stop
		}
		return nil
	})
	if errors.Is(err, stop) {
		return nil
	}
	return err
}

// ListFiles enumerates up to limit project files, relative to root.
func (l *Local) ListFiles(root string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultMaxList
	}
	var files []string
	err := walk(root, func(rel string) bool {
		if ignoredExts[filepath.Ext(rel)] {
			return true
		}
		files = append(files, rel)
		return len(files) < limit
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", entities.ErrFileSystem, root, err)
	}
	return files, nil
}

// Dependencies reads requirements.txt and package.json when present.
func (l *Local) Dependencies(root, projectType string) map[string][]string {
	deps := map[string][]string{}

	if data, err := os.ReadFile(filepath.Join(root, "requirements.txt")); err == nil {
		var python []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			python = append(python, line)
		}
		deps["python"] = python
	}

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			Dependencies map[string]any `json:"dependencies"`
		}
		if err := json.Unmarshal(data, &pkg); err != nil {
			l.logger.Debug().Err(err).Msg("unreadable package.json")
		} else {
			names := make([]string, 0, len(pkg.Dependencies))
			for name := range pkg.Dependencies {
				names = append(names, name)
			}
			sort.Strings(names)
			deps["nodejs"] = names
		}
	}

	return deps
}

// RelevantFiles returns up to limit source files: python first, then
// javascript, typescript and html. No ranking by content.
func (l *Local) RelevantFiles(root string, limit int) []string {
	buckets := make(map[string][]string, len(relevantExts))
	_ = walk(root, func(rel string) bool {
		ext := filepath.Ext(rel)
		buckets[ext] = append(buckets[ext], rel)
		return true
	})

	var out []string
	for _, ext := range relevantExts {
		for _, rel := range buckets[ext] {
			if len(out) >= limit {
				return out
			}
			out = append(out, rel)
		}
	}
	return out
}

// ReadFile reads a whole file as text.
func (l *Local) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrFileSystem, err)
	}
	return string(data), nil
}

// WriteFile replaces a file's content, creating parent directories.
func (l *Local) WriteFile(path, content string, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrFileSystem, err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrFileSystem, err)
	}
	// WriteFile keeps the old mode of an existing file.
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrFileSystem, err)
	}
	return nil
}
