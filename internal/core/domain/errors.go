package domain

import "go.trai.ch/zerr"

var (
	// ErrPluginInvocation is returned when a plugin fails to compile a single file or root.
	ErrPluginInvocation = zerr.New("plugin invocation failed")

	// ErrPluginConstruction is returned when a plugin instance cannot be created.
	ErrPluginConstruction = zerr.New("failed to construct plugin instance")

	// ErrUnknownPluginKind is returned when a plugin definition names a kind with no registered factory.
	ErrUnknownPluginKind = zerr.New("unknown plugin kind")

	// ErrPluginSourceHashFailed is returned when a plugin's own source files cannot be fingerprinted.
	ErrPluginSourceHashFailed = zerr.New("failed to fingerprint plugin source")

	// ErrFileNotVisible is returned when a plugin reads a file that is not visible to the program.
	ErrFileNotVisible = zerr.New("file not visible to program")

	// ErrSnapshotCorrupt is returned when an on-disk snapshot cannot be decoded.
	ErrSnapshotCorrupt = zerr.New("snapshot is corrupt")

	// ErrSnapshotVersion is returned when an on-disk snapshot has a different schema version.
	ErrSnapshotVersion = zerr.New("snapshot schema version mismatch")

	// ErrStoreCreateFailed is returned when the snapshot directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create snapshot directory")

	// ErrStoreReadFailed is returned when a snapshot cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read snapshot")

	// ErrStoreWriteFailed is returned when a snapshot cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write snapshot")

	// ErrStoreMarshalFailed is returned when a snapshot cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to encode snapshot")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no kiln.yaml can be found.
	ErrConfigNotFound = zerr.New("could not find kiln.yaml")

	// ErrInvalidPattern is returned when a source pattern is not a valid glob.
	ErrInvalidPattern = zerr.New("invalid source pattern")

	// ErrInvalidOnChange is returned when a program's on_change strategy is invalid.
	ErrInvalidOnChange = zerr.New("invalid on_change strategy, expected 'restart' or 'refresh'")

	// ErrInvalidFailedDepsPolicy is returned when failed_dependencies is invalid.
	ErrInvalidFailedDepsPolicy = zerr.New("invalid failed_dependencies policy, expected 'discard' or 'keep'")

	// ErrInvalidOutputDir is returned when the output or cache directory is not a distinct
	// directory strictly inside the project root.
	ErrInvalidOutputDir = zerr.New("output and cache must be separate directories inside the project root")

	// ErrInvalidName is returned when a program or plugin name contains unsupported characters.
	ErrInvalidName = zerr.New("invalid name, expected letters, digits, '.', '_' or '-'")

	// ErrMissingPluginKind is returned when a plugin declares no kind.
	ErrMissingPluginKind = zerr.New("plugin kind is required")

	// ErrNoPrograms is returned when the configuration declares no programs.
	ErrNoPrograms = zerr.New("no programs declared")

	// ErrProgramNotFound is returned when a requested program is not declared.
	ErrProgramNotFound = zerr.New("program not found")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrSourceScanFailed is returned when the source tree cannot be scanned.
	ErrSourceScanFailed = zerr.New("failed to scan source files")

	// ErrArtifactWriteFailed is returned when a build artifact cannot be written.
	ErrArtifactWriteFailed = zerr.New("failed to write build artifact")

	// ErrPassFailed is returned when a program's pass could not complete.
	ErrPassFailed = zerr.New("build pass failed")

	// ErrBuildFailed is returned when one or more programs failed to build.
	ErrBuildFailed = zerr.New("build failed")
)
