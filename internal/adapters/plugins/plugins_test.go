package plugins_test

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/plugins"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// memContext serves files from memory.
type memContext struct {
	program domain.Program
	files   map[string]string
}

func (m memContext) Program() domain.Program { return m.program }

func (m memContext) ReadFile(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, zerr.With(domain.ErrFileNotVisible, "path", path)
	}
	return []byte(content), nil
}

func build(t *testing.T, def domain.PluginDef) ports.Plugin {
	t.Helper()
	for _, f := range plugins.Factories() {
		if f.Kind() == def.Kind {
			p, err := f.New(def)
			require.NoError(t, err)
			return p
		}
	}
	t.Fatalf("no factory for %s", def.Kind)
	return nil
}

func newPlugin(def domain.PluginDef) (ports.Plugin, error) {
	for _, f := range plugins.Factories() {
		if f.Kind() == def.Kind {
			return f.New(def)
		}
	}
	return nil, nil
}

func TestFactories_Kinds(t *testing.T) {
	var kinds []string
	for _, f := range plugins.Factories() {
		kinds = append(kinds, f.Kind())
	}
	assert.Equal(t, []string{plugins.KindCopy, plugins.KindImports, plugins.KindCommand}, kinds)
}

func TestCopy_Compile(t *testing.T) {
	cctx := memContext{files: map[string]string{"/f1.coffee": "share.X = 1\n"}}

	plain := build(t, domain.PluginDef{Name: "coffee", Kind: plugins.KindCopy})
	res, err := plain.Compile(t.Context(), "/f1.coffee", cctx)
	require.NoError(t, err)
	assert.Equal(t, "share.X = 1\n", string(res.Output))
	assert.Equal(t, []string{"/f1.coffee"}, res.FilesRead)

	bannered := build(t, domain.PluginDef{Name: "coffee", Kind: plugins.KindCopy, Options: map[string]string{"banner": "// built"}})
	res, err = bannered.Compile(t.Context(), "/f1.coffee", cctx)
	require.NoError(t, err)
	assert.Equal(t, "// built\nshare.X = 1\n", string(res.Output))

	_, err = plain.Compile(t.Context(), "/missing.coffee", cctx)
	require.Error(t, err)
}

func TestCopy_RejectsUnknownOptions(t *testing.T) {
	_, err := newPlugin(domain.PluginDef{Name: "coffee", Kind: plugins.KindCopy, Options: map[string]string{"minify": "true"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown plugin option")
}

func TestImports_Compile(t *testing.T) {
	plugin := build(t, domain.PluginDef{Name: "less", Kind: plugins.KindImports})

	t.Run("nested relative import", func(t *testing.T) {
		cctx := memContext{files: map[string]string{
			"/subdir/nested-root.main.less": "@import \"../q.less\";\n.nested { color: red; }",
			"/q.less":                       ".q { margin: 0; }",
		}}
		res, err := plugin.Compile(t.Context(), "/subdir/nested-root.main.less", cctx)
		require.NoError(t, err)
		assert.Equal(t, ".q { margin: 0; }\n.nested { color: red; }\n", string(res.Output))
		assert.Equal(t, []string{"/subdir/nested-root.main.less", "/q.less"}, res.FilesRead)
	})

	t.Run("no imports", func(t *testing.T) {
		cctx := memContext{files: map[string]string{"/top.main.less": ".top {}"}}
		res, err := plugin.Compile(t.Context(), "/top.main.less", cctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"/top.main.less"}, res.FilesRead)
	})

	t.Run("diamond imports inline once", func(t *testing.T) {
		cctx := memContext{files: map[string]string{
			"/a.main.less": "@import 'b.less';\n@import 'c.less';",
			"/b.less":      "@import '/d.less';\nb",
			"/c.less":      "@import 'd.less';\nc",
			"/d.less":      "d",
		}}
		res, err := plugin.Compile(t.Context(), "/a.main.less", cctx)
		require.NoError(t, err)
		assert.Equal(t, "d\nb\nc\n", string(res.Output))
		assert.Equal(t, []string{"/a.main.less", "/b.less", "/d.less", "/c.less"}, res.FilesRead)
	})

	t.Run("missing import reports partial dependencies", func(t *testing.T) {
		cctx := memContext{files: map[string]string{"/a.main.less": "@import \"gone.less\";"}}
		res, err := plugin.Compile(t.Context(), "/a.main.less", cctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrFileNotVisible.Error())
		assert.Equal(t, []string{"/a.main.less", "/gone.less"}, res.FilesRead)
	})

	t.Run("cycle", func(t *testing.T) {
		cctx := memContext{files: map[string]string{
			"/a.main.less": "@import \"b.less\";",
			"/b.less":      "@import \"a.main.less\";",
		}}
		_, err := plugin.Compile(t.Context(), "/a.main.less", cctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "import cycle")
	})
}

func TestImports_CustomDirective(t *testing.T) {
	plugin := build(t, domain.PluginDef{Name: "tmpl", Kind: plugins.KindImports, Options: map[string]string{"directive": "#include"}})
	cctx := memContext{files: map[string]string{
		"/page.main.html": "#include \"header.html\"\n<body/>",
		"/header.html":    "<head/>",
	}}

	res, err := plugin.Compile(t.Context(), "/page.main.html", cctx)
	require.NoError(t, err)
	assert.Equal(t, "<head/>\n<body/>\n", string(res.Output))
}

func TestCommand_Compile(t *testing.T) {
	if _, err := exec.LookPath("tr"); err != nil {
		t.Skip("tr not available")
	}
	plugin := build(t, domain.PluginDef{Name: "upper", Kind: plugins.KindCommand, Options: map[string]string{"command": "tr a-z A-Z"}})
	cctx := memContext{program: domain.Program{Name: "server", Arch: "os"}, files: map[string]string{"/f1.txt": "hello"}}

	res, err := plugin.Compile(t.Context(), "/f1.txt", cctx)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(res.Output))
	assert.Equal(t, []string{"/f1.txt"}, res.FilesRead)
}

func TestCommand_Failure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	plugin := build(t, domain.PluginDef{Name: "broken", Kind: plugins.KindCommand, Options: map[string]string{"command": "false"}})
	cctx := memContext{program: domain.Program{Name: "server", Arch: "os"}, files: map[string]string{"/f1.txt": "x"}}

	_, err := plugin.Compile(t.Context(), "/f1.txt", cctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "command failed")
}

func TestCommand_Construction(t *testing.T) {
	_, err := newPlugin(domain.PluginDef{Name: "empty", Kind: plugins.KindCommand})
	require.Error(t, err)

	_, err = newPlugin(domain.PluginDef{
		Name:    "missing",
		Kind:    plugins.KindCommand,
		Options: map[string]string{"command": "kiln-no-such-binary-xyz"},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "command not found")
}
