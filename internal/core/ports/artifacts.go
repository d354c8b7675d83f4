package ports

// ArtifactWriter publishes a program's compiled artifact set.
//
//go:generate go run go.uber.org/mock/mockgen -source=artifacts.go -destination=mocks/mock_artifacts.go -package=mocks
type ArtifactWriter interface {
	// Write replaces the program's published artifacts with the given set,
	// keyed by source path. Artifacts absent from the set are removed.
	Write(program string, artifacts map[string][]byte) error
}
