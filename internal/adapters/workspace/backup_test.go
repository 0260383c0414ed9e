package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedBackups(dir string) *Backups {
	b := NewBackups(dir)
	b.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return b
}

func TestBackupDir_SiblingCopy(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "shop")
	writeTree(t, root, map[string]string{
		"app.py":                "print('v1')",
		"templates/index.html":  "<h1>",
		"node_modules/dep/x.js": "",
		".git/HEAD":             "ref",
	})

	dest, err := fixedBackups("").BackupDir(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "shop_backup_20240309_140507"), dest)

	data, err := os.ReadFile(filepath.Join(dest, "app.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('v1')", string(data))
	assert.FileExists(t, filepath.Join(dest, "templates", "index.html"))
	assert.NoDirExists(t, filepath.Join(dest, "node_modules"))
	assert.NoDirExists(t, filepath.Join(dest, ".git"))
}

func TestBackupDir_CollisionSuffix(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "p")
	writeTree(t, root, map[string]string{"a.txt": "a"})

	b := fixedBackups("")
	first, err := b.BackupDir(root)
	require.NoError(t, err)
	second, err := b.BackupDir(root)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first+"_1", second)
}

func TestBackupDir_DestinationInsideRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})

	dest, err := fixedBackups(filepath.Join(root, ".backups")).BackupDir(root)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "a.txt"))
	assert.NoDirExists(t, filepath.Join(dest, ".backups"))
}

func TestBackupFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))

	dest, err := fixedBackups("").BackupFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "main_backup_20240309_140507.py"), dest)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := fixedBackups("").BackupFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "main_backup_20240309_140507_1.py"), again)
}

func TestBackupFile_Missing(t *testing.T) {
	_, err := NewBackups("").BackupFile(filepath.Join(t.TempDir(), "none.py"))
	assert.Error(t, err)
}
