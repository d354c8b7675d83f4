package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader *mocks.MockConfigLoader
	store  *mocks.MockSnapshotStore
	logger *mocks.MockLogger
	cli    *commands.CLI
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		loader: mocks.NewMockConfigLoader(ctrl),
		store:  mocks.NewMockSnapshotStore(ctrl),
		logger: mocks.NewMockLogger(ctrl),
	}
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	a := app.New(
		f.loader,
		f.logger,
		f.store,
		mocks.NewMockFingerprinter(ctrl),
		mocks.NewMockSourceResolver(ctrl),
		nil,
		mocks.NewMockWatcher(ctrl),
		nil,
	)
	f.cli = commands.New(a, f.logger)
	return f
}

func project(root string) *domain.Project {
	return &domain.Project{
		Root:     root,
		Output:   domain.DefaultBuildPath(),
		CacheDir: domain.DefaultCachePath(),
		Programs: []domain.Program{{Name: "server", Arch: "os", OnChange: domain.OnChangeRestart}},
	}
}

func TestBuild_ConfigError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load("/work").Return(nil, domain.ErrConfigNotFound).Times(1)

	f.cli.SetArgs([]string{"build", "-C", "/work"})
	err := f.cli.Execute(t.Context())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
}

func TestBuild_UnknownProgram(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(project(t.TempDir()), nil).Times(1)

	f.cli.SetArgs([]string{"build", "web.cordova"})
	err := f.cli.Execute(t.Context())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrProgramNotFound.Error())
}

func TestBuild_ProgramFlag(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(project(t.TempDir()), nil).Times(1)

	f.cli.SetArgs([]string{"build", "-p", "server", "--program", "web.browser"})
	err := f.cli.Execute(t.Context())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrProgramNotFound.Error())
}

func TestWatch_ConfigError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigParseFailed).Times(1)

	f.cli.SetArgs([]string{"watch"})
	err := f.cli.Execute(t.Context())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrConfigParseFailed.Error())
}

func TestClean(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantCache   bool
		wantRemoved bool
	}{
		{name: "both by default", args: []string{"clean"}, wantCache: true, wantRemoved: true},
		{name: "cache only", args: []string{"clean", "--cache"}, wantCache: true, wantRemoved: false},
		{name: "output only", args: []string{"clean", "--output"}, wantCache: false, wantRemoved: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			root := t.TempDir()
			output := filepath.Join(root, filepath.FromSlash(domain.DefaultBuildPath()), "server")
			require.NoError(t, os.MkdirAll(output, domain.DirPerm))

			f.loader.EXPECT().Load(".").Return(project(root), nil).Times(1)
			if tt.wantCache {
				cacheDir := filepath.Join(root, filepath.FromSlash(domain.DefaultCachePath()))
				f.store.EXPECT().Remove(cacheDir, "server").Return(nil).Times(1)
			}

			f.cli.SetArgs(tt.args)
			require.NoError(t, f.cli.Execute(t.Context()))

			if tt.wantRemoved {
				assert.NoDirExists(t, output)
			} else {
				assert.DirExists(t, output)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer

	cmd := f.cli
	cmd.SetArgs([]string{"version"})
	cmd.SetOutput(&out)
	require.NoError(t, cmd.Execute(t.Context()))
	assert.Equal(t, build.String()+"\n", out.String())
}

type jsonRecorder struct {
	*mocks.MockLogger
	json bool
}

func (r *jsonRecorder) SetJSON(enable bool) { r.json = enable }

func TestRoot_JSONFlag(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := &jsonRecorder{MockLogger: mocks.NewMockLogger(ctrl)}

	a := app.New(nil, rec, nil, nil, nil, nil, nil, nil)
	cli := commands.New(a, rec)
	cli.SetArgs([]string{"--json", "version"})
	cli.SetOutput(&bytes.Buffer{})
	require.NoError(t, cli.Execute(t.Context()))
	assert.True(t, rec.json)
}
