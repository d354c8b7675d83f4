package ports

import "go.trai.ch/kiln/internal/core/domain"

// SnapshotStore persists one versioned snapshot per program.
// Every operation takes the cache directory explicitly.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type SnapshotStore interface {
	// Load returns the program's snapshot.
	// Returns nil, nil if no snapshot exists. A snapshot that cannot be decoded,
	// or whose schema version differs, is reported as an error and must be treated as absent.
	Load(dir, program string) (*domain.Snapshot, error)

	// Save replaces the program's snapshot atomically.
	Save(dir string, snapshot *domain.Snapshot) error

	// Remove deletes the program's snapshot. Removing a missing snapshot is not an error.
	Remove(dir, program string) error
}
