package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

const kilnfile = `version: "1"
programs:
  server: { arch: os }
plugins:
  coffee: { kind: copy, patterns: ["**/*.coffee"] }
`

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.ConfigFileName), []byte(kilnfile), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f1.coffee"), []byte("share.X = 1\n"), domain.FilePerm))
	return root
}

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		expectedExit int
	}{
		{name: "Build all programs", args: []string{"build"}, expectedExit: 0},
		{name: "Build named program", args: []string{"build", "server"}, expectedExit: 0},
		{name: "Unknown program", args: []string{"build", "web.browser"}, expectedExit: 1},
		{name: "Unknown command", args: []string{"bake"}, expectedExit: 1},
		{name: "Version", args: []string{"version"}, expectedExit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupProject(t)
			t.Chdir(root)

			assert.Equal(t, tt.expectedExit, run(tt.args))
		})
	}
}

func TestRun_BuildThenClean(t *testing.T) {
	root := setupProject(t)
	artifact := filepath.Join(root, ".kiln", "build", "server", "f1.coffee")

	require.Equal(t, 0, run([]string{"--dir", root, "build"}))
	assert.FileExists(t, artifact)

	require.Equal(t, 0, run([]string{"--dir", root, "clean"}))
	assert.NoFileExists(t, artifact)
	assert.NoFileExists(t, filepath.Join(root, ".kiln", "cache", "server.snapshot"))
}

func TestRun_NoConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.Equal(t, 1, run([]string{"build"}))
}
