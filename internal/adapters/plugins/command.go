package plugins

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Command pipes each file through an external program: content on stdin,
// compiled output on stdout.
type Command struct {
	argv []string
}

func newCommand(def domain.PluginDef) (ports.Plugin, error) {
	if err := checkOptions(def, "command"); err != nil {
		return nil, err
	}
	argv := strings.Fields(def.Options["command"])
	if len(argv) == 0 {
		return nil, zerr.With(zerr.New("command plugin requires a command option"), "plugin", def.Name)
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "command not found"), "command", argv[0])
	}
	return &Command{argv: argv}, nil
}

// Compile implements ports.Plugin.
func (c *Command) Compile(ctx context.Context, path string, cctx ports.CompileContext) (domain.CompileResult, error) {
	read := []string{path}
	content, err := cctx.ReadFile(path)
	if err != nil {
		return domain.CompileResult{FilesRead: read}, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...) //nolint:gosec // command comes from the project manifest
	cmd.Stdin = bytes.NewReader(content)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(cmd.Environ(), "KILN_FILE="+path, "KILN_ARCH="+cctx.Program().Arch)

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return domain.CompileResult{FilesRead: read}, zerr.With(zerr.With(
			zerr.Wrap(err, "command failed"), "exit_code", exitCode), "stderr", strings.TrimSpace(stderr.String()))
	}
	return domain.CompileResult{Output: stdout.Bytes(), FilesRead: read}, nil
}
