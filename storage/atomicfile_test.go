package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "id_rsa.pub")

	require.NoError(t, writeFileAtomic(path, []byte("first"), filePerm))
	require.NoError(t, writeFileAtomic(path, []byte("second"), filePerm))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files may be left behind")
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "id_rsa.pub")
	assert.Error(t, writeFileAtomic(path, []byte("data"), filePerm))
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, dirPerm))
	removed, err := removeIfEmpty(empty)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoDirExists(t, empty)

	full := filepath.Join(dir, "full")
	writeTestFile(t, full, "file", "content")
	removed, err = removeIfEmpty(full)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.DirExists(t, full)
}
