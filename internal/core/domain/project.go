package domain

import "go.trai.ch/zerr"

// Package groups source files under a directory and assigns them architecture tags.
type Package struct {
	Name string
	// Path is the package directory, slash-separated and relative to the project root.
	Path string
	// Arch overrides the default tags of every file in the package when non-empty.
	Arch []string
}

// Project is the loaded manifest: what to build, with which plugins, for which programs.
type Project struct {
	// Root is the absolute project root.
	Root string
	// Output is the artifact directory, relative to Root.
	Output string
	// CacheDir is the snapshot directory, relative to Root.
	CacheDir string
	// Programs are sorted by name.
	Programs []Program
	// Plugins are sorted by name.
	Plugins  []PluginDef
	Packages []Package
	// Ignore lists directory and file name globs skipped during scans.
	Ignore     []string
	FailedDeps FailedDepsPolicy
}

// Program returns the named program.
func (p *Project) Program(name string) (Program, error) {
	for _, prog := range p.Programs {
		if prog.Name == name {
			return prog, nil
		}
	}
	return Program{}, zerr.With(ErrProgramNotFound, "program", name)
}

// Plugin returns the named plugin definition.
func (p *Project) Plugin(name string) (PluginDef, bool) {
	for _, def := range p.Plugins {
		if def.Name == name {
			return def, true
		}
	}
	return PluginDef{}, false
}

// PluginsFor returns the plugins that run for the program, in name order.
func (p *Project) PluginsFor(prog Program) []PluginDef {
	out := make([]PluginDef, 0, len(p.Plugins))
	for _, def := range p.Plugins {
		if def.RunsFor(prog) {
			out = append(out, def)
		}
	}
	return out
}
