package domain

import "go.trai.ch/zerr"

// SnapshotVersion is the schema version written by this build of kiln.
// Snapshots carrying any other version are ignored as a whole.
const SnapshotVersion = 1

// Snapshot is the persisted state of one program's build cache.
type Snapshot struct {
	Version int    `json:"version"`
	Program string `json:"program"`
	// Files holds the fingerprint of every visible source file at the end of the pass.
	Files FingerprintSet `json:"files"`
	// Plugins holds the plugin-source fingerprint of every plugin that ran.
	Plugins map[string]Fingerprint `json:"plugins,omitzero"`
	// Units holds cached compilation results, keyed by plugin and then by unit path.
	Units map[string]map[string]UnitEntry `json:"units,omitzero"`
}

// UnitEntry is the cached result of compiling one file or root.
type UnitEntry struct {
	// DepsFingerprint combines the fingerprints of Deps at compile time.
	DepsFingerprint Fingerprint `json:"deps_fingerprint,omitzero"`
	// Deps is the ordered list of files the unit was compiled from.
	Deps []string `json:"deps,omitzero"`
	// Output is the compiled artifact.
	Output []byte `json:"output,omitzero"`
}

// NewSnapshot returns an empty snapshot for the program.
func NewSnapshot(program string) *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		Program: program,
		Files:   make(FingerprintSet),
		Plugins: make(map[string]Fingerprint),
		Units:   make(map[string]map[string]UnitEntry),
	}
}

// Validate checks that a decoded snapshot is structurally usable for the program.
func (s *Snapshot) Validate(program string) error {
	if s.Version != SnapshotVersion {
		return zerr.With(zerr.With(ErrSnapshotVersion, "want", SnapshotVersion), "got", s.Version)
	}
	if s.Program != program {
		return zerr.With(zerr.With(ErrSnapshotCorrupt, "program", program), "snapshot_program", s.Program)
	}
	if s.Files == nil {
		return zerr.With(ErrSnapshotCorrupt, "reason", "missing file fingerprints")
	}
	for plugin, units := range s.Units {
		if _, ok := s.Plugins[plugin]; !ok {
			return zerr.With(zerr.With(ErrSnapshotCorrupt, "reason", "units without plugin fingerprint"), "plugin", plugin)
		}
		for path, u := range units {
			if u.DepsFingerprint.IsZero() {
				return zerr.With(zerr.With(ErrSnapshotCorrupt, "reason", "unit without deps fingerprint"), "unit", path)
			}
		}
	}
	return nil
}
