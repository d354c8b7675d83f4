package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/depgraph"
	"go.trai.ch/kiln/internal/engine/invalidation"
	"go.trai.ch/kiln/internal/engine/progcache"
	"go.trai.ch/kiln/internal/engine/registry"
	"go.trai.ch/zerr"
)

// PassResult describes one finished program pass.
type PassResult struct {
	Program string
	// First is set for the first pass of the program in this process.
	First bool
	// Changed reports whether the artifact set differs byte-for-byte from the previous one.
	Changed bool
	// Invocations lists every plugin invocation of the pass in submission order.
	Invocations []domain.Invocation
	// Failures joins the errors of every unit that failed to compile.
	Failures error
}

// RunPass brings one program up to date. Passes of the same program never overlap.
//
// A unit failure is isolated: the pass still completes and the failure is
// reported in PassResult.Failures. Anything else that stops the pass leaves the
// snapshot and the published artifacts untouched and is returned as an error.
//
// Cancellation of ctx is observed before each plugin invocation. An invocation
// that has started compiles every unit it announced.
func (o *Orchestrator) RunPass(ctx context.Context, name string) (PassResult, error) {
	res := PassResult{Program: name}

	prog, err := o.project.Program(name)
	if err != nil {
		return res, err
	}

	st := o.state(prog)
	st.mu.Lock()
	defer st.mu.Unlock()

	ctx, span := o.tracer.Start(ctx, "pass", ports.WithAttribute("kiln.program", name))
	defer span.End()

	res, err = o.runPass(ctx, st)
	if err != nil {
		span.RecordError(err)
		o.emit(domain.PassFailedEvent{Program: name, Err: err})
		return res, errors.Join(domain.ErrPassFailed, zerr.With(err, "program", name))
	}
	if res.Failures != nil {
		span.RecordError(res.Failures)
	}
	span.SetAttribute("kiln.changed", res.Changed)
	return res, nil
}

func (o *Orchestrator) runPass(ctx context.Context, st *programState) (PassResult, error) {
	prog := st.program
	res := PassResult{Program: prog.Name, First: st.passes == 0}

	st.cache.Load(ctx)

	files, err := o.fingerprint(prog)
	if err != nil {
		return res, err
	}
	visible := make(map[string]domain.SourceFile, len(files))
	for _, f := range files {
		visible[f.Path] = f
	}
	st.viewMu.Lock()
	st.visible = visible
	st.viewMu.Unlock()

	defs := o.project.PluginsFor(prog)
	instances := make(map[string]*registry.Instance, len(defs))
	states := make([]invalidation.PluginState, 0, len(defs))
	for _, def := range defs {
		inst, err := o.registry.Instance(ctx, def)
		if err != nil {
			return res, err
		}
		instances[def.Name] = inst

		ps := invalidation.PluginState{
			Def:         def,
			Fingerprint: inst.Fingerprint(),
			Previous:    st.cache.PluginFingerprint(def.Name),
			Cached:      st.cache.Cached(def.Name),
		}
		if def.RootAware() {
			ps.Tracker = st.cache.Tracker(def.Name)
		}
		states = append(states, ps)
	}

	plan := o.engine.Plan(invalidation.Input{
		Program:  prog,
		Files:    files,
		Previous: st.cache.Previous(),
		Plugins:  states,
	})

	pass := progcache.Pass{Files: plan.Files, Plugins: make(map[string]progcache.PluginResult, len(plan.Steps))}
	cctx := &compileContext{root: o.project.Root, program: prog, visible: visible}

	var failures []error
	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		inst := instances[step.Plugin]
		units, inv, stepFailures, err := o.runStep(ctx, st, step, inst, plan, cctx)
		if err != nil {
			return res, err
		}
		res.Invocations = append(res.Invocations, inv)
		failures = append(failures, stepFailures...)
		pass.Plugins[step.Plugin] = progcache.PluginResult{Fingerprint: inst.Fingerprint(), Units: units}
	}
	res.Failures = errors.Join(failures...)

	previous := st.cache.Artifacts()
	if err := st.cache.Commit(pass); err != nil {
		o.warn(fmt.Sprintf("could not save %s build cache: %v", prog.Name, err))
	}
	current := st.cache.Artifacts()
	res.Changed = !maps.EqualFunc(previous, current, bytes.Equal)

	if err := o.writer.Write(prog.Name, current); err != nil {
		return res, err
	}

	st.passes++
	return res, nil
}

// runStep submits the step's recompile list to the plugin as one invocation and
// folds the outcome together with the reused units.
func (o *Orchestrator) runStep(
	ctx context.Context,
	st *programState,
	step invalidation.Step,
	inst *registry.Instance,
	plan invalidation.Plan,
	cctx *compileContext,
) (map[string]domain.UnitEntry, domain.Invocation, []error, error) {
	prog := st.program
	def := o.pluginDef(step.Plugin)
	rootAware := def.RootAware()

	var tracker *depgraph.Tracker
	if rootAware {
		tracker = st.cache.Tracker(def.Name)
		for _, p := range plan.Diff.Deleted {
			tracker.RemoveFile(p)
		}
		for _, r := range step.Retired {
			tracker.Retire(r)
		}
		for _, r := range step.NewRoots {
			tracker.NewFileDiscovered(r)
		}
	}

	units := make(map[string]domain.UnitEntry, len(step.Reuse)+len(step.Recompile))
	for _, path := range step.Reuse {
		if u, ok := st.cache.Unit(def.Name, path); ok {
			units[path] = u
		}
	}

	ctx, span := o.tracer.Start(ctx, "invoke",
		ports.WithAttribute("kiln.program", prog.Name),
		ports.WithAttribute("kiln.plugin", def.Name),
		ports.WithAttribute("kiln.files", len(step.Recompile)),
	)
	defer span.End()

	// An announced batch always runs to completion.
	ctx = context.WithoutCancel(ctx)

	var failures []error
	inv, err := inst.Invoke(ctx, prog.Name, step.Recompile, func(ctx context.Context, plugin ports.Plugin) error {
		for _, path := range step.Recompile {
			result, cerr := plugin.Compile(ctx, path, cctx)
			deps := []string{path}
			if rootAware {
				deps = rootDeps(path, result.FilesRead)
				o.reportDangling(prog.Name, def.Name, path, deps, cctx)
			}

			if cerr != nil {
				failures = append(failures, errors.Join(domain.ErrPluginInvocation,
					zerr.With(zerr.With(cerr, "plugin", def.Name), "file", path)))
				if rootAware && o.project.FailedDeps == domain.FailedDepsKeep {
					tracker.RecordDependencies(path, deps)
				}
				continue
			}

			if rootAware {
				tracker.RecordDependencies(path, deps)
			}
			units[path] = domain.UnitEntry{
				DepsFingerprint: domain.Combine(deps, plan.Files),
				Deps:            deps,
				Output:          result.Output,
			}
		}
		return nil
	})
	span.SetAttribute("kiln.seq", inv.Seq)
	if err != nil {
		span.RecordError(err)
		return nil, inv, nil, err
	}
	if len(failures) > 0 {
		span.RecordError(errors.Join(failures...))
	}
	return units, inv, failures, nil
}

// fingerprint resolves the program's visible files and fingerprints them.
// Files that vanish between the scan and hashing are dropped.
func (o *Orchestrator) fingerprint(prog domain.Program) ([]domain.SourceFile, error) {
	files, err := o.resolver.Resolve(o.project, prog)
	if err != nil {
		return nil, err
	}

	out := files[:0]
	for _, f := range files {
		abs := absPath(o.project.Root, f.Path)
		fp, err := o.hasher.Fingerprint(abs)
		if err != nil {
			if _, statErr := os.Stat(abs); errors.Is(statErr, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		f.Fingerprint = fp
		out = append(out, f)
	}
	return out, nil
}

func (o *Orchestrator) reportDangling(program, plugin, root string, deps []string, cctx *compileContext) {
	var outside []string
	for _, d := range deps {
		if !cctx.visibleFile(d) {
			outside = append(outside, d)
		}
	}
	if len(outside) == 0 {
		return
	}
	o.emit(domain.DanglingDependencyEvent{Program: program, Plugin: plugin, Root: root, Files: outside})
}

func (o *Orchestrator) pluginDef(name string) domain.PluginDef {
	def, _ := o.project.Plugin(name)
	return def
}

func (o *Orchestrator) warn(msg string) {
	if o.logger != nil {
		o.logger.Warn(msg)
	}
}

// rootDeps normalizes the files a root read into its dependency list:
// the root first, then every other file once, in read order.
func rootDeps(root string, read []string) []string {
	deps := make([]string, 0, len(read)+1)
	deps = append(deps, root)
	seen := map[string]bool{root: true}
	for _, p := range read {
		p = normalize(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		deps = append(deps, p)
	}
	return deps
}

func absPath(root, p string) string {
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(p, "/")))
}
