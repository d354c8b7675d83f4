package plugins

import (
	"bufio"
	"bytes"
	"context"
	"path"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const defaultDirective = "@import"

// Imports inlines `<directive> "path";` lines recursively, starting at a root.
// Paths are resolved against the importing file's directory, or the project
// root when they start with "/". Each file is inlined at most once.
type Imports struct {
	directive string
}

func newImports(def domain.PluginDef) (ports.Plugin, error) {
	if err := checkOptions(def, "directive"); err != nil {
		return nil, err
	}
	directive := def.Options["directive"]
	if directive == "" {
		directive = defaultDirective
	}
	return &Imports{directive: directive}, nil
}

// Compile implements ports.Plugin. FilesRead starts with root and lists every
// file reached, including one that failed to load.
func (p *Imports) Compile(_ context.Context, root string, cctx ports.CompileContext) (domain.CompileResult, error) {
	var (
		out  bytes.Buffer
		read []string
		seen = make(map[string]bool)
	)

	var inline func(file string, stack []string) error
	inline = func(file string, stack []string) error {
		for _, s := range stack {
			if s == file {
				return zerr.With(zerr.New("import cycle"), "file", file)
			}
		}
		if seen[file] {
			return nil
		}
		seen[file] = true
		read = append(read, file)

		content, err := cctx.ReadFile(file)
		if err != nil {
			return zerr.With(err, "imported_by", last(stack))
		}

		scanner := bufio.NewScanner(bytes.NewReader(content))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			target, ok := p.parse(line)
			if !ok {
				out.WriteString(line)
				out.WriteByte('\n')
				continue
			}
			if err := inline(resolve(file, target), append(stack, file)); err != nil {
				return err
			}
		}
		return scanner.Err()
	}

	if err := inline(root, nil); err != nil {
		return domain.CompileResult{FilesRead: read}, err
	}
	return domain.CompileResult{Output: out.Bytes(), FilesRead: read}, nil
}

// parse extracts the target of an import line.
func (p *Imports) parse(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), p.directive)
	if !ok {
		return "", false
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ";")
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 {
		return "", false
	}
	quote := rest[0]
	if (quote != '"' && quote != '\'') || rest[len(rest)-1] != quote {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

func resolve(from, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(target)
	}
	return path.Join(path.Dir(from), target)
}

func last(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}
