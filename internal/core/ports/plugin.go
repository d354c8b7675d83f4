package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// CompileContext grants a plugin read access to the files of the program being built.
type CompileContext interface {
	// Program is the program being built.
	Program() domain.Program

	// ReadFile returns the content of a file visible to the program.
	// Reading any other file fails with domain.ErrFileNotVisible.
	ReadFile(path string) ([]byte, error)
}

// Plugin compiles one file, or one root together with everything it imports.
//
// Plugins are opaque to the cache: they may keep internal memoization for the
// lifetime of their instance, which the registry shares between passes and
// programs until the plugin's own source changes.
//
//go:generate go run go.uber.org/mock/mockgen -source=plugin.go -destination=mocks/mock_plugin.go -package=mocks
type Plugin interface {
	// Compile compiles path. Root-aware plugins must return every file they read,
	// including path itself, in FilesRead, also when they fail.
	Compile(ctx context.Context, path string, cctx CompileContext) (domain.CompileResult, error)
}

// PluginFactory builds plugin instances of one kind.
type PluginFactory interface {
	// Kind is the value of `kind:` in kiln.yaml this factory serves.
	Kind() string

	// New constructs a fresh instance for the definition.
	New(def domain.PluginDef) (Plugin, error)
}
