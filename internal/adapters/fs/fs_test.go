package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "f1.coffee", "f1")
	writeFile(t, tmpDir, "client/top.main.less", "top")
	writeFile(t, tmpDir, ".git/config", "git")
	writeFile(t, tmpDir, ".jj/store", "jj")
	writeFile(t, tmpDir, "node_modules/x/index.js", "x")
	writeFile(t, tmpDir, "notes.swp", "swap")

	walker := fs.NewWalker()
	var files []string
	for path := range walker.WalkFiles(tmpDir, []string{"node_modules", "*.swp"}) {
		rel, err := filepath.Rel(tmpDir, path)
		require.NoError(t, err)
		files = append(files, filepath.ToSlash(rel))
	}

	assert.ElementsMatch(t, []string{"f1.coffee", "client/top.main.less"}, files)
}

func TestWalker_WalkFiles_EarlyExit(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a", "a")
	writeFile(t, tmpDir, "b", "b")

	count := 0
	for range fs.NewWalker().WalkFiles(tmpDir, nil) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestHasher_Fingerprint(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "share.coffee", "share.Y = 'Y is 1'\n")

	hasher := fs.NewHasher()
	fp, err := hasher.Fingerprint(path)
	require.NoError(t, err)

	// Streaming and in-memory fingerprints agree.
	assert.Equal(t, domain.FingerprintBytes([]byte("share.Y = 'Y is 1'\n")), fp)

	again, err := hasher.Fingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, fp, again)

	writeFile(t, tmpDir, "share.coffee", "share.Y = 'Y is 3'\n")
	changed, err := hasher.Fingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, fp, changed)

	_, err = hasher.Fingerprint(filepath.Join(tmpDir, "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrFileOpenFailed.Error())
}

func TestHasher_FingerprintFiles(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeFile(t, tmpDir, "plugin/a.js", "a")
	b := writeFile(t, tmpDir, "plugin/b.js", "b")

	hasher := fs.NewHasher()
	first, err := hasher.FingerprintFiles([]string{a, b})
	require.NoError(t, err)

	reordered, err := hasher.FingerprintFiles([]string{b, a})
	require.NoError(t, err)
	assert.Equal(t, first, reordered, "order of inputs must not matter")

	writeFile(t, tmpDir, "plugin/b.js", "b2")
	edited, err := hasher.FingerprintFiles([]string{a, b})
	require.NoError(t, err)
	assert.NotEqual(t, first, edited)

	empty, err := hasher.FingerprintFiles(nil)
	require.NoError(t, err)
	assert.False(t, empty.IsZero())
}
