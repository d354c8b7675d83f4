package domain

import "path/filepath"

const (
	// KilnDirName is the name of the internal workspace directory.
	KilnDirName = ".kiln"

	// CacheDirName is the name of the snapshot directory.
	CacheDirName = "cache"

	// BuildDirName is the name of the default artifact output directory.
	BuildDirName = "build"

	// SnapshotExt is the file extension of program snapshots.
	SnapshotExt = ".snapshot"

	// ConfigFileName is the name of the project manifest.
	ConfigFileName = "kiln.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the default snapshot directory.
// It joins .kiln and cache.
func DefaultCachePath() string {
	return filepath.Join(KilnDirName, CacheDirName)
}

// DefaultBuildPath returns the default artifact directory.
// It joins .kiln and build.
func DefaultBuildPath() string {
	return filepath.Join(KilnDirName, BuildDirName)
}
