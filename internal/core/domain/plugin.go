package domain

// PluginDef declares a compiler plugin in the project manifest.
type PluginDef struct {
	// Name identifies the plugin; it is the registry key.
	Name string
	// Kind selects the factory that builds instances.
	Kind string
	// Patterns select the files the plugin owns (doublestar globs, root-relative).
	Patterns []string
	// Roots select which owned files are roots. Empty means the plugin is file-granular.
	Roots []string
	// Arch restricts the programs the plugin runs for. Empty means every program.
	Arch []string
	// Sources are the plugin's own source files; editing them replaces the instance.
	Sources []string
	// Options are passed verbatim to the factory.
	Options map[string]string
	// Concurrent reports whether one instance may be invoked from several programs at once.
	Concurrent bool
}

// RootAware reports whether the plugin compiles roots that import other files.
func (d PluginDef) RootAware() bool {
	return len(d.Roots) > 0
}

// RunsFor reports whether the plugin participates in builds of the given program.
func (d PluginDef) RunsFor(p Program) bool {
	return ArchMatchesAny(p.Arch, d.Arch)
}

// CompileResult is what a plugin returns for one file or root.
type CompileResult struct {
	// Output is the compiled artifact.
	Output []byte
	// FilesRead lists every file the compilation read, in read order.
	// It is meaningful for root-aware plugins and may be partial on failure.
	FilesRead []string
}

// Invocation identifies one batch call of a plugin instance.
type Invocation struct {
	Plugin string
	Seq    int
	Files  []string
}

// FailedDepsPolicy decides whether dependencies reported by a failed compilation are recorded.
type FailedDepsPolicy string

const (
	// FailedDepsDiscard keeps the root's previous edges when its compilation fails.
	FailedDepsDiscard FailedDepsPolicy = "discard"
	// FailedDepsKeep records the partial dependency list of a failed compilation.
	FailedDepsKeep FailedDepsPolicy = "keep"
)
