package domain

import "strings"

// SourceFile is a single file visible to at least one program.
type SourceFile struct {
	// Path is slash-separated, relative to the project root, with a leading "/".
	Path string
	// Fingerprint identifies the file content.
	Fingerprint Fingerprint
	// Package is the owning package name; empty for application files.
	Package string
	// Arch lists the architecture tags the file is visible to. Empty means every architecture.
	Arch []string
	// Plugin is the name of the plugin that compiles this file.
	Plugin string
	// Root reports whether the file is an independent top-level compilation unit.
	Root bool
}

// VisibleTo reports whether the file is visible to a program built for arch.
func (f SourceFile) VisibleTo(arch string) bool {
	return ArchMatchesAny(arch, f.Arch)
}

// ArchMatches reports whether the tag selects the given program architecture.
// A tag matches when it equals arch or is a dot-separated prefix of it,
// so "web" matches "web.browser" but not "webkit".
func ArchMatches(arch, tag string) bool {
	if !strings.HasPrefix(arch, tag) {
		return false
	}
	return len(arch) == len(tag) || arch[len(tag)] == '.'
}

// ArchMatchesAny reports whether any tag matches arch. An empty tag list matches everything.
func ArchMatchesAny(arch string, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if ArchMatches(arch, tag) {
			return true
		}
	}
	return false
}

// DirectoryArch maps directory names that restrict the files beneath them to one
// side of the app when the owning package declares no architecture of its own.
var DirectoryArch = map[string]string{
	"client": "web",
	"server": "os",
}

// DefaultArch returns the architecture of a program declared without one.
// A program named after a convention directory builds for that directory's
// architecture, so it sees its own files; any other program uses its name.
func DefaultArch(program string) string {
	if arch, ok := DirectoryArch[program]; ok {
		return arch
	}
	return program
}

// OnChange selects what a program's consumers do when its artifacts change.
type OnChange string

const (
	// OnChangeRestart restarts the process serving the program (server-like programs).
	OnChangeRestart OnChange = "restart"
	// OnChangeRefresh refreshes connected clients (client-only programs).
	OnChangeRefresh OnChange = "refresh"
)

// Program is one build target with its own visible source subset and artifact set.
type Program struct {
	Name     string
	Arch     string
	OnChange OnChange
}
