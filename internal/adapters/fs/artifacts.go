package fs

import (
	"bytes"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactWriter = (*ArtifactWriter)(nil)

// ArtifactWriter mirrors a program's artifact set into <dir>/<program>.
type ArtifactWriter struct {
	dir    string
	walker *Walker
}

// NewArtifactWriter creates a writer rooted at dir.
func NewArtifactWriter(dir string, walker *Walker) *ArtifactWriter {
	return &ArtifactWriter{dir: dir, walker: walker}
}

// Write makes the program directory hold exactly the given artifacts.
// Unchanged files are left untouched and files no longer produced are removed.
func (w *ArtifactWriter) Write(program string, artifacts map[string][]byte) error {
	base := filepath.Join(w.dir, program)
	if err := os.MkdirAll(base, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", base)
	}

	want := make(map[string]struct{}, len(artifacts))
	for name, content := range artifacts {
		target := filepath.Join(base, filepath.FromSlash(strings.TrimPrefix(name, "/")))
		want[target] = struct{}{}
		if err := writeIfChanged(target, content); err != nil {
			return err
		}
	}

	for existing := range w.walker.WalkFiles(base, nil) {
		if _, ok := want[existing]; ok {
			continue
		}
		if err := os.Remove(existing); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", existing)
		}
	}
	return nil
}

func writeIfChanged(target string, content []byte) error {
	if current, err := os.ReadFile(target); err == nil && bytes.Equal(current, content) { //nolint:gosec // target is under the output dir
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", target)
	}
	return WriteFileAtomic(target, content)
}

// WriteFileAtomic writes content to a temp file next to target and renames it into place.
func WriteFileAtomic(target string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", target)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", target)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", target)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", target)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactWriteFailed.Error()), "path", target)
	}
	return nil
}
