package config

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Version    string                `yaml:"version"`
	Root       string                `yaml:"root"`
	Output     string                `yaml:"output"`
	Cache      string                `yaml:"cache"`
	FailedDeps string                `yaml:"failed_dependencies"`
	Programs   map[string]ProgramDTO `yaml:"programs"`
	Packages   []PackageDTO          `yaml:"packages"`
	Plugins    map[string]PluginDTO  `yaml:"plugins"`
	Ignore     *[]string             `yaml:"ignore"`
}

// ProgramDTO represents a program definition in the configuration.
type ProgramDTO struct {
	Arch     string `yaml:"arch"`
	OnChange string `yaml:"on_change"`
}

// PackageDTO represents a package definition in the configuration.
type PackageDTO struct {
	Name string   `yaml:"name"`
	Path string   `yaml:"path"`
	Arch []string `yaml:"arch"`
}

// PluginDTO represents a plugin definition in the configuration.
type PluginDTO struct {
	Kind       string            `yaml:"kind"`
	Patterns   []string          `yaml:"patterns"`
	Roots      []string          `yaml:"roots"`
	Arch       []string          `yaml:"arch"`
	Sources    []string          `yaml:"sources"`
	Options    map[string]string `yaml:"options"`
	Concurrent bool              `yaml:"concurrent"`
}
