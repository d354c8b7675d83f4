package depgraph_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/engine/depgraph"
)

func TestTracker_RecordDependencies(t *testing.T) {
	tr := depgraph.New()

	tr.RecordDependencies("/top.main.less", []string{"/top.main.less", "/q.less"})
	tr.RecordDependencies("/subdir/nested-root.main.less", []string{"/subdir/nested-root.main.less", "/q.less"})

	assert.Equal(t, []string{"/subdir/nested-root.main.less", "/top.main.less"}, tr.AffectedRoots("/q.less"))
	assert.Equal(t, []string{"/top.main.less"}, tr.AffectedRoots("/top.main.less"))

	// Recompiling top without q drops the edge wholesale.
	tr.RecordDependencies("/top.main.less", []string{"/top.main.less"})
	assert.Equal(t, []string{"/subdir/nested-root.main.less"}, tr.AffectedRoots("/q.less"))
	assert.Equal(t, []string{"/top.main.less"}, tr.Dependencies("/top.main.less"))
	assert.Empty(t, tr.AffectedRoots("/unknown.less"))
}

func TestTracker_RecordDependencies_KeepsOrderAndDedupes(t *testing.T) {
	tr := depgraph.New()
	tr.RecordDependencies("/a.main.less", []string{"/a.main.less", "/z.less", "/b.less", "/z.less"})
	assert.Equal(t, []string{"/a.main.less", "/z.less", "/b.less"}, tr.Dependencies("/a.main.less"))
}

func TestTracker_NewFileDiscovered(t *testing.T) {
	tr := depgraph.New()

	assert.True(t, tr.NewFileDiscovered("/top.main.less"))
	assert.False(t, tr.NewFileDiscovered("/top.main.less"))
	assert.True(t, tr.HasRoot("/top.main.less"))
	assert.Empty(t, tr.Dependencies("/top.main.less"))
	assert.Equal(t, []string{"/top.main.less"}, tr.Roots())
}

func TestTracker_RemoveFile(t *testing.T) {
	tr := depgraph.New()
	tr.RecordDependencies("/top.main.less", []string{"/top.main.less", "/q.less"})
	tr.RecordDependencies("/other.main.less", []string{"/other.main.less", "/q.less", "/top.main.less"})

	t.Run("dependency", func(t *testing.T) {
		referencing := tr.RemoveFile("/q.less")
		assert.Equal(t, []string{"/other.main.less", "/top.main.less"}, referencing)
		assert.Empty(t, tr.AffectedRoots("/q.less"))
		assert.Equal(t, []string{"/top.main.less"}, tr.Dependencies("/top.main.less"))
	})

	t.Run("root", func(t *testing.T) {
		referencing := tr.RemoveFile("/top.main.less")
		assert.Equal(t, []string{"/other.main.less"}, referencing)
		assert.False(t, tr.HasRoot("/top.main.less"))
		assert.Equal(t, []string{"/other.main.less"}, tr.Roots())
		assert.Equal(t, []string{"/other.main.less"}, tr.Dependencies("/other.main.less"))
	})
}

func TestTracker_Retire(t *testing.T) {
	tr := depgraph.New()
	tr.RecordDependencies("/top.main.less", []string{"/top.main.less", "/q.less"})
	tr.Retire("/top.main.less")

	assert.Empty(t, tr.Roots())
	assert.Empty(t, tr.AffectedRoots("/q.less"))
}

func TestTracker_ExportImport(t *testing.T) {
	tr := depgraph.New()
	tr.RecordDependencies("/top.main.less", []string{"/top.main.less", "/q.less"})
	tr.NewFileDiscovered("/empty.main.less")

	edges := tr.Export()

	restored := depgraph.New()
	restored.RecordDependencies("/stale.main.less", []string{"/stale.less"})
	restored.Import(edges)

	assert.Equal(t, []string{"/empty.main.less", "/top.main.less"}, restored.Roots())
	assert.Equal(t, []string{"/top.main.less"}, restored.AffectedRoots("/q.less"))
	assert.Empty(t, restored.AffectedRoots("/stale.less"))

	// Export is a copy.
	edges["/top.main.less"][0] = "/mutated"
	assert.Equal(t, []string{"/top.main.less", "/q.less"}, tr.Dependencies("/top.main.less"))
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr := depgraph.New()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			root := []string{"/a.main.less", "/b.main.less"}[i%2]
			tr.RecordDependencies(root, []string{root, "/shared.less"})
			_ = tr.AffectedRoots("/shared.less")
			_ = tr.Export()
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"/a.main.less", "/b.main.less"}, tr.AffectedRoots("/shared.less"))
}
