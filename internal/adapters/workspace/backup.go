package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/safety"
)

const backupTimeLayout = "20060102_150405"

// Backups implements ports.BackupService. Copies are named
// <name>_backup_<timestamp> and placed next to the original, or in Dir when set.
type Backups struct {
	Dir string
	now func() time.Time
}

// NewBackups creates a backup service. An empty dir means "next to the original".
func NewBackups(dir string) *Backups {
	return &Backups{Dir: dir, now: time.Now}
}

func (b *Backups) destDir(original string) (string, error) {
	if b.Dir == "" {
		return filepath.Dir(original), nil
	}
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating backup dir: %v", entities.ErrFileSystem, err)
	}
	return b.Dir, nil
}

// unique appends _1, _2... until the name is free.
func unique(dir, stem, ext string) string {
	candidate := filepath.Join(dir, stem+ext)
	for i := 1; exists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	return candidate
}

// BackupDir copies root, minus vendor and build directories.
func (b *Backups) BackupDir(root string) (string, error) {
	root = filepath.Clean(root)
	dir, err := b.destDir(root)
	if err != nil {
		return "", err
	}
	dest := unique(dir, fmt.Sprintf("%s_backup_%s", filepath.Base(root), b.now().Format(backupTimeLayout)), "")

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (ignoredDirs[d.Name()] || safety.Within(dest, path)) {
				return filepath.SkipDir
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
	if err != nil {
		return "", fmt.Errorf("%w: backing up %s: %v", entities.ErrFileSystem, root, err)
	}
	return dest, nil
}

// BackupFile copies a single file to <stem>_backup_<timestamp><ext>.
func (b *Backups) BackupFile(path string) (string, error) {
	dir, err := b.destDir(path)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	dest := unique(dir, fmt.Sprintf("%s_backup_%s", stem, b.now().Format(backupTimeLayout)), ext)

	if err := copyFile(path, dest); err != nil {
		return "", fmt.Errorf("%w: backing up %s: %v", entities.ErrFileSystem, path, err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
