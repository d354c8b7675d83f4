package ports

import "go.trai.ch/kiln/internal/core/domain"

// Fingerprinter computes content-derived identities for files.
//
//go:generate go run go.uber.org/mock/mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns the identity of a single file's content.
	Fingerprint(path string) (domain.Fingerprint, error)

	// FingerprintFiles returns one identity for several files, independent of argument order.
	FingerprintFiles(paths []string) (domain.Fingerprint, error)
}
