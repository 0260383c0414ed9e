// Package safety enforces directory confinement for every filesystem mutation.
package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// Guard holds the allow-list of root directories.
type Guard struct {
	roots []string
}

// NewGuard creates a Guard. Roots are resolved once; symlinks are followed.
func NewGuard(allowed []string) *Guard {
	g := &Guard{}
	for _, dir := range allowed {
		if dir == "" {
			continue
		}
		if resolved, err := Resolve(dir); err == nil {
			g.roots = append(g.roots, resolved)
		}
	}
	return g
}

// Roots returns the resolved allow-list.
func (g *Guard) Roots() []string {
	return append([]string(nil), g.roots...)
}

// IsAllowed reports whether path resolves to a root or a descendant of one.
func (g *Guard) IsAllowed(path string) bool {
	_, err := g.Check(path)
	return err == nil
}

// Check resolves path and returns it when it lies inside the allow-list.
func (g *Guard) Check(path string) (string, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", entities.ErrUnauthorizedPath, path, err)
	}
	for _, root := range g.roots {
		if Within(root, resolved) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("%w: %s", entities.ErrUnauthorizedPath, path)
}

// Within reports whether target equals root or sits below it.
// Both paths must already be absolute and clean.
func Within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Resolve returns the absolute, clean, symlink-free form of path.
// Missing trailing components are kept as-is below the deepest existing ancestor.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	existing := abs
	var missing []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		missing = append([]string{filepath.Base(existing)}, missing...)
		existing = parent
	}

	real, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{real}, missing...)...), nil
}
