package orchestrator

import (
	"context"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
)

// Notify schedules a pass for every program the changed paths can affect and
// returns their names. Paths are absolute paths under the project root or
// root-relative paths.
// A program keeps at most one pending pass: notifications arriving while a
// pass is queued or running fold into the next one.
func (o *Orchestrator) Notify(paths []string) []string {
	var affected []string
	for _, prog := range o.project.Programs {
		if o.affects(prog, paths) {
			affected = append(affected, prog.Name)
		}
	}
	if len(affected) == 0 {
		return nil
	}

	o.pendingMu.Lock()
	for _, name := range affected {
		o.pending[name] = true
	}
	o.pendingMu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return affected
}

// Watch runs queued passes until ctx is done. Each wake-up builds every
// program pending at that moment in one Build call.
func (o *Orchestrator) Watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-o.wake:
		}

		names := o.takePending()
		if len(names) == 0 {
			continue
		}
		if _, err := o.Build(ctx, names); err != nil && o.logger != nil {
			o.logger.Error(err)
		}
	}
}

func (o *Orchestrator) takePending() []string {
	o.pendingMu.Lock()
	defer o.pendingMu.Unlock()

	names := make([]string, 0, len(o.pending))
	for name := range o.pending {
		names = append(names, name)
	}
	clear(o.pending)
	slices.Sort(names)
	return names
}

// affects reports whether any path is, or could become, part of the program's build.
func (o *Orchestrator) affects(prog domain.Program, paths []string) bool {
	st := o.state(prog)
	st.viewMu.RLock()
	visible := st.visible
	st.viewMu.RUnlock()

	// A program that never completed a resolve has nothing to compare against.
	if visible == nil {
		return true
	}

	for _, p := range paths {
		rel := o.relative(p)
		if _, ok := visible[rel]; ok {
			return true
		}
		if _, ok := o.resolver.Classify(o.project, prog, rel); ok {
			return true
		}
		for _, def := range o.project.PluginsFor(prog) {
			for _, src := range def.Sources {
				if normalize(src) == rel {
					return true
				}
			}
		}
	}
	return false
}

// relative maps an absolute path under the project root to its root-relative
// form. Any other path is taken as already root-relative.
func (o *Orchestrator) relative(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(o.project.Root, p); err == nil && filepath.IsLocal(rel) {
			return normalize(filepath.ToSlash(rel))
		}
	}
	return normalize(filepath.ToSlash(p))
}
