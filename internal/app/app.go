// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.trai.ch/kiln/internal/adapters/events"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/orchestrator"
	"go.trai.ch/kiln/internal/engine/registry"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	store        ports.SnapshotStore
	hasher       ports.Fingerprinter
	resolver     ports.SourceResolver
	factories    []ports.PluginFactory
	watcher      ports.Watcher
	tracer       ports.Tracer

	sinks    []ports.EventSink
	debounce time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	store ports.SnapshotStore,
	hasher ports.Fingerprinter,
	resolver ports.SourceResolver,
	factories []ports.PluginFactory,
	w ports.Watcher,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		store:        store,
		hasher:       hasher,
		resolver:     resolver,
		factories:    factories,
		watcher:      w,
		tracer:       tracer,
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithEventSink adds a sink that receives every build event next to the log.
func (a *App) WithEventSink(sink ports.EventSink) *App {
	a.sinks = append(a.sinks, sink)
	return a
}

// WithDebounceWindow sets how long watch mode waits for changes to settle.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounce = d
	return a
}

// BuildOptions configuration for the Build and Watch methods.
type BuildOptions struct {
	// Cwd is where the search for kiln.yaml starts.
	Cwd string
	// Programs restricts the build to the named programs. Empty means all.
	Programs []string
	// CacheDebug logs every plugin invocation and cache load.
	CacheDebug bool
	// Trace logs a timing line for every pass and plugin invocation.
	Trace bool
}

// Build runs one pass for every requested program.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	orch, shutdown, err := a.prepare(opts)
	if err != nil {
		return err
	}
	defer shutdown()

	results, err := orch.Build(ctx, opts.Programs)
	a.summarize(results)
	return err
}

// Watch builds once and then rebuilds the affected programs whenever sources change,
// until ctx is canceled.
func (a *App) Watch(ctx context.Context, opts BuildOptions) error {
	orch, shutdown, err := a.prepare(opts)
	if err != nil {
		return err
	}
	defer shutdown()

	results, err := orch.Build(ctx, opts.Programs)
	a.summarize(results)
	if err != nil {
		a.logger.Error(err)
	}

	project := orch.Project()
	if err := a.watcher.Start(ctx, project.Root, project.Ignore); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() { _ = a.watcher.Stop() }()

	debouncer := watcher.NewDebouncer(a.debounce, func(paths []string) {
		orch.Notify(paths)
	})
	defer debouncer.Stop()

	done := make(chan error, 1)
	go func() { done <- orch.Watch(ctx) }()

	a.logger.Info(fmt.Sprintf("watching %s for changes", project.Root))
	for event := range a.watcher.Events() {
		debouncer.Add(event.Path)
	}
	return <-done
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Cwd    string
	Cache  bool
	Output bool
}

// Clean removes build snapshots and published artifacts based on the provided options.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	project, err := a.configLoader.Load(options.Cwd)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error
	if options.Cache {
		a.logger.Info("removing build cache...")
		orch := a.orchestrator(project, ports.EventSink(events.Multi(a.sinks)))
		if err := orch.Reset(); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to remove build cache"))
		} else {
			a.logger.Info("removed build cache")
		}
	}

	if options.Output {
		a.logger.Info("removing build output...")
		if err := os.RemoveAll(filepath.Join(project.Root, filepath.FromSlash(project.Output))); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, "failed to remove build output"))
		} else {
			a.logger.Info("removed build output")
		}
	}
	return errs
}

func (a *App) prepare(opts BuildOptions) (*orchestrator.Orchestrator, func(), error) {
	project, err := a.configLoader.Load(opts.Cwd)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}
	for _, name := range opts.Programs {
		if _, err := project.Program(name); err != nil {
			return nil, nil, err
		}
	}

	shutdown := func() {}
	if opts.Trace {
		shutdown = setupOTel(a.logger)
	}

	sink := events.Multi(append([]ports.EventSink{events.NewLogSink(a.logger, opts.CacheDebug)}, a.sinks...))
	return a.orchestrator(project, sink), shutdown, nil
}

func (a *App) orchestrator(project *domain.Project, sink ports.EventSink) *orchestrator.Orchestrator {
	output := filepath.Join(project.Root, filepath.FromSlash(project.Output))
	return orchestrator.New(project, orchestrator.Options{
		Resolver: a.resolver,
		Hasher:   a.hasher,
		Registry: registry.New(project.Root, a.factories, a.hasher, sink),
		Store:    a.store,
		Writer:   fs.NewArtifactWriter(output, fs.NewWalker()),
		Sink:     sink,
		Logger:   a.logger,
		Tracer:   a.tracer,
	})
}

func (a *App) summarize(results []orchestrator.PassResult) {
	for _, res := range results {
		if res.Program == "" {
			continue
		}
		files := 0
		for _, inv := range res.Invocations {
			files += len(inv.Files)
		}
		state := "unchanged"
		if res.Changed {
			state = "changed"
		}
		a.logger.Info(fmt.Sprintf("%s: compiled %d file(s), artifacts %s", res.Program, files, state))
	}
}

// setupOTel routes spans to the logger and returns a function that flushes them.
func setupOTel(logger ports.Logger) func() {
	tp := telemetry.NewProvider(logger)
	otel.SetTracerProvider(tp)
	return func() { _ = tp.Shutdown(context.Background()) }
}
