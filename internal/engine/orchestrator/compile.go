package orchestrator

import (
	"os"
	"path"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// compileContext restricts plugin reads to the files visible to one program.
type compileContext struct {
	root    string
	program domain.Program
	visible map[string]domain.SourceFile
}

func (c *compileContext) Program() domain.Program {
	return c.program
}

func (c *compileContext) ReadFile(p string) ([]byte, error) {
	p = normalize(p)
	if !c.visibleFile(p) {
		return nil, zerr.With(zerr.With(domain.ErrFileNotVisible, "path", p), "program", c.program.Name)
	}
	content, err := os.ReadFile(absPath(c.root, p))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", p)
	}
	return content, nil
}

func (c *compileContext) visibleFile(p string) bool {
	_, ok := c.visible[p]
	return ok
}

// normalize turns a root-relative path into its canonical "/a/b" form.
func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}
