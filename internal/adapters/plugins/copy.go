package plugins

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// Copy emits each file unchanged, optionally behind a banner line.
type Copy struct {
	banner string
}

func newCopy(def domain.PluginDef) (ports.Plugin, error) {
	if err := checkOptions(def, "banner"); err != nil {
		return nil, err
	}
	return &Copy{banner: def.Options["banner"]}, nil
}

// Compile implements ports.Plugin.
func (c *Copy) Compile(_ context.Context, path string, cctx ports.CompileContext) (domain.CompileResult, error) {
	content, err := cctx.ReadFile(path)
	if err != nil {
		return domain.CompileResult{FilesRead: []string{path}}, err
	}

	out := content
	if c.banner != "" {
		out = make([]byte, 0, len(c.banner)+1+len(content))
		out = append(out, c.banner...)
		out = append(out, '\n')
		out = append(out, content...)
	}
	return domain.CompileResult{Output: out, FilesRead: []string{path}}, nil
}
