package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReportsChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "client"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".kiln", "cache"), 0o750))

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), root, []string{"node_modules"}))
	t.Cleanup(func() { _ = w.Stop() })

	events := make(chan ports.WatchEvent, 64)
	go func() {
		for e := range w.Events() {
			events <- e
		}
		close(events)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep.js"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".kiln", "cache", "server.snapshot"), []byte("x"), 0o600))
	target := filepath.Join(root, "client", "app.coffee")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-events:
			require.True(t, ok, "event stream closed early")
			assert.NotContains(t, e.Path, "node_modules")
			assert.NotContains(t, e.Path, ".kiln")
			if e.Path == target {
				return
			}
		case <-timeout:
			t.Fatal("no event for the changed file")
		}
	}
}
