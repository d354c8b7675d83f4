package fs

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceResolver = (*Resolver)(nil)

// Resolver turns the project manifest into the ordered set of source files a program can see.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// Resolve scans the project root and returns the files visible to the program in path order.
// Fingerprints are left empty.
func (r *Resolver) Resolve(project *domain.Project, program domain.Program) ([]domain.SourceFile, error) {
	root := project.Root
	ignores := r.ignores(project)

	var files []domain.SourceFile
	var scanErr error
	for abs := range r.walker.WalkFiles(root, ignores) {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			scanErr = zerr.With(zerr.Wrap(err, domain.ErrSourceScanFailed.Error()), "path", abs)
			break
		}
		file, ok := r.classify(project, program, "/"+filepath.ToSlash(rel))
		if ok {
			files = append(files, file)
		}
	}
	if scanErr != nil {
		return nil, scanErr
	}

	slices.SortFunc(files, func(a, b domain.SourceFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

// Classify describes a single project path without scanning.
// It reports false when the path is ignored or not visible to the program.
func (r *Resolver) Classify(project *domain.Project, program domain.Program, p string) (domain.SourceFile, bool) {
	p = "/" + strings.TrimPrefix(filepath.ToSlash(p), "/")
	ignores := r.ignores(project)
	for _, elem := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		if elem == ".git" || elem == ".jj" || Ignored(elem, ignores) {
			return domain.SourceFile{}, false
		}
	}
	return r.classify(project, program, p)
}

func (r *Resolver) classify(project *domain.Project, program domain.Program, p string) (domain.SourceFile, bool) {
	rel := strings.TrimPrefix(p, "/")
	if underAny(rel, project.Output, project.CacheDir) {
		return domain.SourceFile{}, false
	}

	file := domain.SourceFile{Path: p}
	if pkg, ok := owningPackage(project.Packages, rel); ok {
		file.Package = pkg.Name
		file.Arch = pkg.Arch
		if len(file.Arch) == 0 {
			file.Arch = conventionFor(strings.TrimPrefix(strings.TrimPrefix(rel, pkg.Path), "/"))
		}
	} else {
		file.Arch = conventionFor(rel)
	}

	if !file.VisibleTo(program.Arch) {
		return domain.SourceFile{}, false
	}

	for _, def := range project.PluginsFor(program) {
		if !matchAny(def.Patterns, rel) {
			continue
		}
		file.Plugin = def.Name
		file.Root = def.RootAware() && matchAny(def.Roots, rel)
		break
	}
	return file, true
}

func (r *Resolver) ignores(project *domain.Project) []string {
	out := slices.Clone(project.Ignore)
	return append(out, domain.KilnDirName)
}

// owningPackage returns the package with the longest path containing rel.
func owningPackage(pkgs []domain.Package, rel string) (domain.Package, bool) {
	var best domain.Package
	found := false
	for _, pkg := range pkgs {
		dir := strings.Trim(pkg.Path, "/")
		if dir != "" && rel != dir && !strings.HasPrefix(rel, dir+"/") {
			continue
		}
		if !found || len(dir) > len(strings.Trim(best.Path, "/")) {
			best = pkg
			best.Path = dir
			found = true
		}
	}
	return best, found
}

// conventionFor returns the architecture implied by the first client or server directory in rel.
func conventionFor(rel string) []string {
	dirs := strings.Split(path.Dir(rel), "/")
	for _, dir := range dirs {
		if arch, ok := domain.DirectoryArch[dir]; ok {
			return []string{arch}
		}
	}
	return nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func underAny(rel string, dirs ...string) bool {
	for _, dir := range dirs {
		dir = strings.Trim(filepath.ToSlash(dir), "/")
		if dir == "" || dir == "." {
			continue
		}
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}
