package ports

import "go.trai.ch/kiln/internal/core/domain"

// SourceResolver produces the declarative list of source files a program can see.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type SourceResolver interface {
	// Resolve scans the project and returns the files visible to the program, sorted by path.
	// Each file is classified with its owning package, architecture tags, plugin and root flag.
	// Fingerprints are left empty.
	Resolve(project *domain.Project, program domain.Program) ([]domain.SourceFile, error)

	// Classify reports whether the root-relative path belongs to the program's source set.
	Classify(project *domain.Project, program domain.Program, path string) (domain.SourceFile, bool)
}
