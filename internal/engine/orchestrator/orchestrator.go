// Package orchestrator runs build passes for the programs of a project.
package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/invalidation"
	"go.trai.ch/kiln/internal/engine/progcache"
	"go.trai.ch/kiln/internal/engine/registry"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options are the collaborators of an Orchestrator.
type Options struct {
	Resolver ports.SourceResolver
	Hasher   ports.Fingerprinter
	Registry *registry.Registry
	Store    ports.SnapshotStore
	Writer   ports.ArtifactWriter
	Sink     ports.EventSink
	Logger   ports.Logger
	// Tracer is optional.
	Tracer ports.Tracer
}

// Orchestrator owns one build cache per program and drives passes over them.
type Orchestrator struct {
	project  *domain.Project
	resolver ports.SourceResolver
	hasher   ports.Fingerprinter
	registry *registry.Registry
	store    ports.SnapshotStore
	writer   ports.ArtifactWriter
	sink     ports.EventSink
	logger   ports.Logger
	tracer   ports.Tracer
	engine   *invalidation.Engine

	mu       sync.Mutex
	programs map[string]*programState

	pendingMu sync.Mutex
	pending   map[string]bool
	wake      chan struct{}
}

// programState serializes the passes of one program.
type programState struct {
	mu      sync.Mutex
	program domain.Program
	cache   *progcache.Cache
	passes  int

	viewMu  sync.RWMutex
	visible map[string]domain.SourceFile
}

// New creates an Orchestrator for project.
func New(project *domain.Project, opts Options) *Orchestrator {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noopTracer{}
	}
	return &Orchestrator{
		project:  project,
		resolver: opts.Resolver,
		hasher:   opts.Hasher,
		registry: opts.Registry,
		store:    opts.Store,
		writer:   opts.Writer,
		sink:     opts.Sink,
		logger:   opts.Logger,
		tracer:   tracer,
		engine:   invalidation.New(),
		programs: make(map[string]*programState),
		pending:  make(map[string]bool),
		wake:     make(chan struct{}, 1),
	}
}

// Project returns the project the orchestrator builds.
func (o *Orchestrator) Project() *domain.Project {
	return o.project
}

func (o *Orchestrator) state(prog domain.Program) *programState {
	o.mu.Lock()
	defer o.mu.Unlock()

	st, ok := o.programs[prog.Name]
	if !ok {
		dir := filepath.Join(o.project.Root, filepath.FromSlash(o.project.CacheDir))
		st = &programState{
			program: prog,
			cache:   progcache.New(prog.Name, dir, o.store, o.sink, o.logger),
		}
		o.programs[prog.Name] = st
	}
	return st
}

// Build runs one pass for every named program concurrently, or for every
// program of the project when names is empty. After all passes finished it
// emits a restart event when a restart program's artifacts changed, or else a
// refresh event when a refresh program's artifacts changed. Passes that are
// the first of their program in this process never trigger either.
func (o *Orchestrator) Build(ctx context.Context, names []string) ([]PassResult, error) {
	if len(names) == 0 {
		for _, p := range o.project.Programs {
			names = append(names, p.Name)
		}
	}

	results := make([]PassResult, len(names))
	errs := make([]error, len(names))

	// A plain group: one program failing must not cancel the others.
	// Wait reports the first failure, errs keeps every program's.
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			res, err := o.RunPass(ctx, name)
			results[i] = res
			if err == nil {
				err = res.Failures
			}
			errs[i] = err
			return err
		})
	}
	waitErr := g.Wait()

	o.announce(results)

	if waitErr != nil {
		return results, errors.Join(domain.ErrBuildFailed, errors.Join(errs...))
	}
	return results, nil
}

func (o *Orchestrator) announce(results []PassResult) {
	var restart, refresh []string
	for _, res := range results {
		if !res.Changed || res.First {
			continue
		}
		prog, err := o.project.Program(res.Program)
		if err != nil {
			continue
		}
		switch prog.OnChange {
		case domain.OnChangeRestart:
			restart = append(restart, prog.Name)
		case domain.OnChangeRefresh:
			refresh = append(refresh, prog.Name)
		}
	}
	slices.Sort(restart)
	slices.Sort(refresh)

	switch {
	case len(restart) > 0:
		o.emit(domain.RestartEvent{Programs: restart})
	case len(refresh) > 0:
		o.emit(domain.RefreshEvent{Programs: refresh})
	}
}

// Reset forgets the build state of every program, in memory and on disk.
func (o *Orchestrator) Reset() error {
	var errs []error
	for _, prog := range o.project.Programs {
		st := o.state(prog)
		st.mu.Lock()
		if err := st.cache.Reset(); err != nil {
			errs = append(errs, zerr.With(err, "program", prog.Name))
		}
		st.passes = 0
		st.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) emit(event domain.Event) {
	if o.sink != nil {
		o.sink.Emit(event)
	}
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End() {}
func (noopSpan) RecordError(error) {}
func (noopSpan) SetAttribute(string, any) {}
