// Package invalidation decides, for one program pass, which units each plugin recompiles.
package invalidation

import (
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/depgraph"
)

// Engine plans passes. It holds no state of its own.
type Engine struct{}

// New creates an Engine.
func New() *Engine {
	return &Engine{}
}

// PluginState is what the engine needs to know about one plugin for one program.
type PluginState struct {
	Def domain.PluginDef
	// Fingerprint is the plugin-source fingerprint of the live instance.
	Fingerprint domain.Fingerprint
	// Previous is the fingerprint recorded in the snapshot, zero when none.
	Previous domain.Fingerprint
	// Tracker holds the root edges of root-aware plugins. Unused otherwise.
	Tracker *depgraph.Tracker
	// Cached lists the units with a cached successful output.
	Cached map[string]bool
}

// Input is the state of a program at the start of a pass.
type Input struct {
	Program domain.Program
	// Files are the visible source files with current fingerprints.
	Files []domain.SourceFile
	// Previous holds the fingerprints of the last committed pass, nil when none.
	Previous domain.FingerprintSet
	Plugins  []PluginState
}

// Step is the work one plugin does in a pass. All lists are in path order.
type Step struct {
	Plugin string
	// Recompile lists the units submitted to the plugin.
	Recompile []string
	// Reuse lists the units whose cached output is kept verbatim.
	Reuse []string
	// NewRoots lists roots not yet known to the tracker.
	NewRoots []string
	// Retired lists roots that left the visible set.
	Retired []string
	// SourceChanged is set when the plugin-source fingerprint differs from the snapshot.
	SourceChanged bool
}

// Plan is the outcome of planning one pass.
type Plan struct {
	Diff  domain.Diff
	Files domain.FingerprintSet
	Steps []Step
}

// Plan computes the work of a pass. Steps are ordered by plugin name.
func (e *Engine) Plan(in Input) Plan {
	current := make(domain.FingerprintSet, len(in.Files))
	for _, f := range in.Files {
		current[f.Path] = f.Fingerprint
	}
	diff := current.Diff(in.Previous)

	plugins := slices.Clone(in.Plugins)
	slices.SortFunc(plugins, func(a, b PluginState) int {
		return strings.Compare(a.Def.Name, b.Def.Name)
	})

	plan := Plan{Diff: diff, Files: current, Steps: make([]Step, 0, len(plugins))}
	for _, ps := range plugins {
		if !ps.Def.RunsFor(in.Program) {
			continue
		}
		plan.Steps = append(plan.Steps, e.planPlugin(in, ps, diff))
	}
	return plan
}

func (e *Engine) planPlugin(in Input, ps PluginState, diff domain.Diff) Step {
	step := Step{Plugin: ps.Def.Name, SourceChanged: ps.Previous != ps.Fingerprint}
	rootAware := ps.Def.RootAware() && ps.Tracker != nil

	var units []string
	for _, f := range in.Files {
		if f.Plugin != ps.Def.Name || !f.VisibleTo(in.Program.Arch) {
			continue
		}
		if rootAware && !f.Root {
			continue
		}
		units = append(units, f.Path)
	}
	slices.Sort(units)

	dirty := make(map[string]bool)
	for _, p := range diff.New {
		dirty[p] = true
	}
	for _, p := range diff.Changed {
		dirty[p] = true
	}

	if rootAware {
		if !diff.Empty() {
			for _, p := range slices.Concat(diff.New, diff.Touched()) {
				for _, root := range ps.Tracker.AffectedRoots(p) {
					dirty[root] = true
				}
			}
		}
		live := make(map[string]bool, len(units))
		for _, u := range units {
			live[u] = true
			if !ps.Tracker.HasRoot(u) {
				step.NewRoots = append(step.NewRoots, u)
				dirty[u] = true
			}
		}
		for _, root := range ps.Tracker.Roots() {
			if !live[root] {
				step.Retired = append(step.Retired, root)
			}
		}
	}

	for _, u := range units {
		if step.SourceChanged || dirty[u] || !ps.Cached[u] {
			step.Recompile = append(step.Recompile, u)
		} else {
			step.Reuse = append(step.Reuse, u)
		}
	}
	return step
}
