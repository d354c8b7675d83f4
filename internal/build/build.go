// Package build holds build-time information.
package build

import "fmt"

// Version is the application version.
// It defaults to "dev" and can be overwritten by linker flags.
var Version = "dev"

// Commit is the VCS revision the binary was built from, set by linker flags.
var Commit = "none"

// String renders the version line printed by `kiln version`.
func String() string {
	if Commit == "none" || Commit == "" {
		return "kiln version " + Version
	}
	return fmt.Sprintf("kiln version %s (%s)", Version, Commit)
}
