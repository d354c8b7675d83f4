package invalidation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/depgraph"
	"go.trai.ch/kiln/internal/engine/invalidation"
)

var browser = domain.Program{Name: "web.browser", Arch: "web.browser", OnChange: domain.OnChangeRefresh}

var (
	coffeeDef = domain.PluginDef{Name: "coffee", Kind: "copy", Patterns: []string{"**/*.coffee"}}
	lessDef   = domain.PluginDef{
		Name:     "less",
		Kind:     "imports",
		Patterns: []string{"**/*.less"},
		Roots:    []string{"**/*.main.less"},
		Arch:     []string{"web"},
	}
)

func files(fps map[string]string) []domain.SourceFile {
	var out []domain.SourceFile
	for path, content := range fps {
		f := domain.SourceFile{Path: path, Fingerprint: domain.FingerprintBytes([]byte(content))}
		switch {
		case strings.HasSuffix(path, ".coffee"):
			f.Plugin = "coffee"
		case strings.HasSuffix(path, ".main.less"):
			f.Plugin, f.Root = "less", true
		case strings.HasSuffix(path, ".less"):
			f.Plugin = "less"
		}
		out = append(out, f)
	}
	return out
}

func set(in []domain.SourceFile) domain.FingerprintSet {
	out := make(domain.FingerprintSet)
	for _, f := range in {
		out[f.Path] = f.Fingerprint
	}
	return out
}

func cachedAll(paths ...string) map[string]bool {
	out := make(map[string]bool)
	for _, p := range paths {
		out[p] = true
	}
	return out
}

func TestEngine_Plan_FirstPass(t *testing.T) {
	current := files(map[string]string{
		"/f1.coffee": "1", "/f2.coffee": "2",
		"/top.main.less": "top", "/subdir/nested-root.main.less": "nested", "/q.less": "q",
	})

	plan := invalidation.New().Plan(invalidation.Input{
		Program: browser,
		Files:   current,
		Plugins: []invalidation.PluginState{
			{Def: lessDef, Fingerprint: "xxh64:less", Tracker: depgraph.New()},
			{Def: coffeeDef, Fingerprint: "xxh64:coffee"},
		},
	})

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "coffee", plan.Steps[0].Plugin)
	assert.Equal(t, []string{"/f1.coffee", "/f2.coffee"}, plan.Steps[0].Recompile)

	less, ok := plan.Step("less")
	require.True(t, ok)
	assert.Equal(t, []string{"/subdir/nested-root.main.less", "/top.main.less"}, less.Recompile)
	assert.Equal(t, less.Recompile, less.NewRoots)
	assert.True(t, less.SourceChanged)
}

func TestEngine_Plan_Minimality(t *testing.T) {
	before := files(map[string]string{
		"/f1.coffee": "1", "/f2.coffee": "2",
		"/top.main.less": "top", "/subdir/nested-root.main.less": "nested", "/q.less": "q",
	})
	tracker := depgraph.New()
	tracker.RecordDependencies("/top.main.less", []string{"/top.main.less"})
	tracker.RecordDependencies("/subdir/nested-root.main.less", []string{"/subdir/nested-root.main.less", "/q.less"})

	state := func(current []domain.SourceFile) invalidation.Input {
		return invalidation.Input{
			Program:  browser,
			Files:    current,
			Previous: set(before),
			Plugins: []invalidation.PluginState{
				{Def: coffeeDef, Fingerprint: "c", Previous: "c", Cached: cachedAll("/f1.coffee", "/f2.coffee")},
				{
					Def: lessDef, Fingerprint: "l", Previous: "l", Tracker: tracker,
					Cached: cachedAll("/top.main.less", "/subdir/nested-root.main.less"),
				},
			},
		}
	}

	t.Run("nothing changed", func(t *testing.T) {
		plan := invalidation.New().Plan(state(before))
		assert.True(t, plan.Diff.Empty())
		for _, s := range plan.Steps {
			assert.Empty(t, s.Recompile, s.Plugin)
		}
	})

	t.Run("file-granular edit", func(t *testing.T) {
		current := files(map[string]string{
			"/f1.coffee": "1", "/f2.coffee": "2 edited",
			"/top.main.less": "top", "/subdir/nested-root.main.less": "nested", "/q.less": "q",
		})
		plan := invalidation.New().Plan(state(current))

		coffee, _ := plan.Step("coffee")
		assert.Equal(t, []string{"/f2.coffee"}, coffee.Recompile)
		assert.Equal(t, []string{"/f1.coffee"}, coffee.Reuse)

		less, _ := plan.Step("less")
		assert.Empty(t, less.Recompile)
	})

	t.Run("partial edit", func(t *testing.T) {
		current := files(map[string]string{
			"/f1.coffee": "1", "/f2.coffee": "2",
			"/top.main.less": "top", "/subdir/nested-root.main.less": "nested", "/q.less": "q edited",
		})
		plan := invalidation.New().Plan(state(current))

		less, _ := plan.Step("less")
		assert.Equal(t, []string{"/subdir/nested-root.main.less"}, less.Recompile)
		assert.Equal(t, []string{"/top.main.less"}, less.Reuse)
	})

	t.Run("deleted root", func(t *testing.T) {
		current := files(map[string]string{
			"/f1.coffee": "1", "/f2.coffee": "2",
			"/subdir/nested-root.main.less": "nested", "/q.less": "q",
		})
		plan := invalidation.New().Plan(state(current))

		assert.Equal(t, []string{"/top.main.less"}, plan.Retired("less"))
		less, _ := plan.Step("less")
		assert.Empty(t, less.Recompile)
	})

	t.Run("deleted dependency", func(t *testing.T) {
		current := files(map[string]string{
			"/f1.coffee": "1", "/f2.coffee": "2",
			"/top.main.less": "top", "/subdir/nested-root.main.less": "nested",
		})
		plan := invalidation.New().Plan(state(current))

		less, _ := plan.Step("less")
		assert.Equal(t, []string{"/subdir/nested-root.main.less"}, less.Recompile)
	})
}

func TestEngine_Plan_PluginSourceChange(t *testing.T) {
	current := files(map[string]string{"/f1.coffee": "1", "/f2.coffee": "2"})

	plan := invalidation.New().Plan(invalidation.Input{
		Program:  browser,
		Files:    current,
		Previous: set(current),
		Plugins: []invalidation.PluginState{
			{Def: coffeeDef, Fingerprint: "new", Previous: "old", Cached: cachedAll("/f1.coffee", "/f2.coffee")},
		},
	})

	coffee, _ := plan.Step("coffee")
	assert.True(t, coffee.SourceChanged)
	assert.Equal(t, []string{"/f1.coffee", "/f2.coffee"}, coffee.Recompile)
	assert.Empty(t, coffee.Reuse)
}

func TestEngine_Plan_UncachedUnitsRetry(t *testing.T) {
	current := files(map[string]string{"/f1.coffee": "1", "/f2.coffee": "2"})

	plan := invalidation.New().Plan(invalidation.Input{
		Program:  browser,
		Files:    current,
		Previous: set(current),
		Plugins: []invalidation.PluginState{
			{Def: coffeeDef, Fingerprint: "c", Previous: "c", Cached: cachedAll("/f1.coffee")},
		},
	})

	coffee, _ := plan.Step("coffee")
	assert.Equal(t, []string{"/f2.coffee"}, coffee.Recompile)
}

func TestEngine_Plan_ArchIsolation(t *testing.T) {
	server := domain.Program{Name: "server", Arch: "os", OnChange: domain.OnChangeRestart}
	current := []domain.SourceFile{
		{Path: "/client/app.coffee", Plugin: "coffee", Arch: []string{"web"}, Fingerprint: "1"},
		{Path: "/f1.coffee", Plugin: "coffee", Fingerprint: "2"},
	}

	plan := invalidation.New().Plan(invalidation.Input{
		Program: server,
		Files:   current,
		Plugins: []invalidation.PluginState{
			{Def: coffeeDef, Fingerprint: "c"},
			{Def: lessDef, Fingerprint: "l", Tracker: depgraph.New()},
		},
	})

	require.Len(t, plan.Steps, 1, "plugins restricted to other architectures never run")
	assert.Equal(t, []string{"/f1.coffee"}, plan.Steps[0].Recompile)
}
