// Package config provides the kiln.yaml loader.
package config

import (
	"fmt"
	"maps"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the kiln.yaml schema version this loader understands.
const SupportedVersion = "1"

var validNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// defaultIgnore is used when kiln.yaml has no ignore list.
var defaultIgnore = []string{"node_modules"}

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds kiln.yaml in cwd or its closest ancestor and returns the project it describes.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var kilnfile Kilnfile
	if err := readAndUnmarshalYAML(configPath, &kilnfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if kilnfile.Version != "" && kilnfile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, this kiln understands %q",
			domain.ConfigFileName, kilnfile.Version, SupportedVersion))
	}

	project := &domain.Project{
		Root:   resolveRoot(configPath, kilnfile.Root),
		Ignore: defaultIgnore,
	}
	if project.Output, err = cleanRel("output", kilnfile.Output, domain.DefaultBuildPath()); err != nil {
		return nil, err
	}
	if project.CacheDir, err = cleanRel("cache", kilnfile.Cache, domain.DefaultCachePath()); err != nil {
		return nil, err
	}
	if nested(project.Output, project.CacheDir) || nested(project.CacheDir, project.Output) {
		return nil, zerr.With(zerr.With(domain.ErrInvalidOutputDir, "output", project.Output), "cache", project.CacheDir)
	}
	if kilnfile.Ignore != nil {
		project.Ignore = *kilnfile.Ignore
	}

	if project.FailedDeps, err = parseFailedDeps(kilnfile.FailedDeps); err != nil {
		return nil, err
	}
	if project.Programs, err = buildPrograms(kilnfile.Programs); err != nil {
		return nil, err
	}
	if project.Packages, err = buildPackages(kilnfile.Packages); err != nil {
		return nil, err
	}
	if project.Plugins, err = l.buildPlugins(kilnfile.Plugins); err != nil {
		return nil, err
	}
	return project, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "cwd", cwd)
	}
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
		}
		currentDir = parentDir
	}
}

func parseFailedDeps(raw string) (domain.FailedDepsPolicy, error) {
	switch domain.FailedDepsPolicy(raw) {
	case "", domain.FailedDepsDiscard:
		return domain.FailedDepsDiscard, nil
	case domain.FailedDepsKeep:
		return domain.FailedDepsKeep, nil
	default:
		return "", zerr.With(domain.ErrInvalidFailedDepsPolicy, "failed_dependencies", raw)
	}
}

func buildPrograms(dtos map[string]ProgramDTO) ([]domain.Program, error) {
	if len(dtos) == 0 {
		return nil, domain.ErrNoPrograms
	}

	programs := make([]domain.Program, 0, len(dtos))
	for _, name := range slices.Sorted(maps.Keys(dtos)) {
		if err := validateName("program", name); err != nil {
			return nil, err
		}
		dto := dtos[name]

		prog := domain.Program{Name: name, Arch: dto.Arch}
		if prog.Arch == "" {
			prog.Arch = domain.DefaultArch(name)
		}

		switch domain.OnChange(dto.OnChange) {
		case domain.OnChangeRestart, domain.OnChangeRefresh:
			prog.OnChange = domain.OnChange(dto.OnChange)
		case "":
			// Programs built for the web are served to clients; everything else is a server.
			prog.OnChange = domain.OnChangeRestart
			if domain.ArchMatches(prog.Arch, "web") {
				prog.OnChange = domain.OnChangeRefresh
			}
		default:
			return nil, zerr.With(zerr.With(domain.ErrInvalidOnChange, "program", name), "on_change", dto.OnChange)
		}
		programs = append(programs, prog)
	}
	return programs, nil
}

func buildPackages(dtos []PackageDTO) ([]domain.Package, error) {
	packages := make([]domain.Package, 0, len(dtos))
	for _, dto := range dtos {
		dir := strings.Trim(path.Clean("/"+filepath.ToSlash(dto.Path)), "/")
		if dir == "" {
			return nil, zerr.With(domain.ErrInvalidPattern, "package_path", dto.Path)
		}
		name := dto.Name
		if name == "" {
			name = path.Base(dir)
		}
		packages = append(packages, domain.Package{Name: name, Path: dir, Arch: dto.Arch})
	}
	return packages, nil
}

func (l *Loader) buildPlugins(dtos map[string]PluginDTO) ([]domain.PluginDef, error) {
	plugins := make([]domain.PluginDef, 0, len(dtos))
	for _, name := range slices.Sorted(maps.Keys(dtos)) {
		if err := validateName("plugin", name); err != nil {
			return nil, err
		}
		dto := dtos[name]
		if dto.Kind == "" {
			return nil, zerr.With(domain.ErrMissingPluginKind, "plugin", name)
		}
		if len(dto.Patterns) == 0 {
			l.Logger.Warn(fmt.Sprintf("plugin %s declares no patterns and will compile nothing", name))
		}

		for _, pattern := range slices.Concat(dto.Patterns, dto.Roots) {
			if !doublestar.ValidatePattern(pattern) {
				return nil, zerr.With(zerr.With(domain.ErrInvalidPattern, "plugin", name), "pattern", pattern)
			}
		}

		plugins = append(plugins, domain.PluginDef{
			Name:       name,
			Kind:       dto.Kind,
			Patterns:   dto.Patterns,
			Roots:      dto.Roots,
			Arch:       dto.Arch,
			Sources:    canonicalizeStrings(dto.Sources),
			Options:    dto.Options,
			Concurrent: dto.Concurrent,
		})
	}
	return plugins, nil
}

func validateName(kind, name string) error {
	if !validNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidName, kind, name)
	}
	return nil
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// cleanRel normalizes a root-relative directory, falling back to def when unset.
// The root itself, absolute paths and paths leaving the root are rejected.
func cleanRel(key, dir, def string) (string, error) {
	if dir == "" {
		dir = def
	}
	slashed := filepath.ToSlash(dir)
	cleaned := path.Clean(slashed)
	if path.IsAbs(slashed) || filepath.IsAbs(dir) || cleaned == "." || !filepath.IsLocal(filepath.FromSlash(cleaned)) {
		return "", zerr.With(domain.ErrInvalidOutputDir, key, dir)
	}
	return cleaned, nil
}

// nested reports whether dir equals parent or lies below it.
func nested(dir, parent string) bool {
	return dir == parent || strings.HasPrefix(dir, parent+"/")
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by walking up from cwd
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := make([]string, len(strs))
	for i, s := range strs {
		sorted[i] = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(s)), "/")
	}
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
