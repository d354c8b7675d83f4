package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
)

func TestArtifactWriter_Write(t *testing.T) {
	dir := t.TempDir()
	writer := fs.NewArtifactWriter(dir, fs.NewWalker())

	require.NoError(t, writer.Write("server", map[string][]byte{
		"/f1.coffee":     []byte("one"),
		"/sub/f2.coffee": []byte("two"),
	}))

	got, err := os.ReadFile(filepath.Join(dir, "server", "sub", "f2.coffee"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	stat, err := os.Stat(filepath.Join(dir, "server", "f1.coffee"))
	require.NoError(t, err)
	before := stat.ModTime()

	require.NoError(t, writer.Write("server", map[string][]byte{
		"/f1.coffee": []byte("one"),
	}))

	_, err = os.Stat(filepath.Join(dir, "server", "sub", "f2.coffee"))
	assert.True(t, os.IsNotExist(err), "artifacts no longer produced are removed")

	stat, err = os.Stat(filepath.Join(dir, "server", "f1.coffee"))
	require.NoError(t, err)
	assert.Equal(t, before, stat.ModTime(), "unchanged artifacts are not rewritten")
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	require.NoError(t, fs.WriteFileAtomic(target, []byte("a")))
	require.NoError(t, fs.WriteFileAtomic(target, []byte("b")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
