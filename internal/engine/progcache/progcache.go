// Package progcache holds one program's build state between passes and across restarts.
package progcache

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/depgraph"
)

// Cache is the in-memory state of one program: previous fingerprints, per-plugin
// dependency trackers, cached unit outputs and plugin fingerprints.
type Cache struct {
	program string
	dir     string
	store   ports.SnapshotStore
	sink    ports.EventSink
	logger  ports.Logger

	mu       sync.RWMutex
	loaded   bool
	files    domain.FingerprintSet
	plugins  map[string]domain.Fingerprint
	units    map[string]map[string]domain.UnitEntry
	trackers map[string]*depgraph.Tracker
}

// New creates an empty Cache for program persisting to dir.
func New(program, dir string, store ports.SnapshotStore, sink ports.EventSink, logger ports.Logger) *Cache {
	return &Cache{
		program:  program,
		dir:      dir,
		store:    store,
		sink:     sink,
		logger:   logger,
		plugins:  make(map[string]domain.Fingerprint),
		units:    make(map[string]map[string]domain.UnitEntry),
		trackers: make(map[string]*depgraph.Tracker),
	}
}

// Load seeds the cache from the snapshot store once. An absent, corrupt or
// outdated snapshot leaves the cache empty; the latter two are logged as warnings.
// Units whose deps fingerprint no longer matches the snapshot's file fingerprints
// are dropped, so they recompile. It reports whether a snapshot was loaded.
func (c *Cache) Load(_ context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.files != nil
	}
	c.loaded = true

	snapshot, err := c.store.Load(c.dir, c.program)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn(fmt.Sprintf("ignoring %s build cache: %v", c.program, err))
		}
		return false
	}
	if snapshot == nil {
		return false
	}

	c.files = snapshot.Files.Clone()
	for plugin, fp := range snapshot.Plugins {
		c.plugins[plugin] = fp
	}
	stale := 0
	for plugin, units := range snapshot.Units {
		kept := make(map[string]domain.UnitEntry, len(units))
		edges := make(map[string][]string, len(units))
		for path, u := range units {
			// The entry must agree with the file fingerprints it was saved with.
			if domain.Combine(u.Deps, snapshot.Files) != u.DepsFingerprint {
				stale++
				continue
			}
			kept[path] = u
			edges[path] = slices.Clone(u.Deps)
		}
		c.units[plugin] = kept
		c.tracker(plugin).Import(edges)
	}
	if stale > 0 && c.logger != nil {
		c.logger.Warn(fmt.Sprintf("dropping %d inconsistent %s cache entries", stale, c.program))
	}

	if c.sink != nil && len(snapshot.Plugins) > 0 {
		c.sink.Emit(domain.CacheLoadedEvent{
			Program: c.program,
			Plugins: slices.Sorted(maps.Keys(snapshot.Plugins)),
		})
	}
	return true
}

// Previous returns the fingerprints of the last committed pass, nil when there is none.
func (c *Cache) Previous() domain.FingerprintSet {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.files == nil {
		return nil
	}
	return c.files.Clone()
}

// PluginFingerprint returns the plugin-source fingerprint recorded for plugin.
func (c *Cache) PluginFingerprint(plugin string) domain.Fingerprint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plugins[plugin]
}

// Tracker returns the dependency tracker of plugin, creating it on first use.
func (c *Cache) Tracker(plugin string) *depgraph.Tracker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker(plugin)
}

func (c *Cache) tracker(plugin string) *depgraph.Tracker {
	t, ok := c.trackers[plugin]
	if !ok {
		t = depgraph.New()
		c.trackers[plugin] = t
	}
	return t
}

// Unit returns the cached successful entry for a unit.
func (c *Cache) Unit(plugin, path string) (domain.UnitEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, ok := c.units[plugin][path]
	return u, ok
}

// Cached returns the set of units of plugin with a cached successful output.
func (c *Cache) Cached(plugin string) map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]bool, len(c.units[plugin]))
	for path := range c.units[plugin] {
		out[path] = true
	}
	return out
}

// Pass is the result of a finished pass, ready to be folded into the cache.
type Pass struct {
	// Files holds the fingerprints of every visible file.
	Files domain.FingerprintSet
	// Plugins maps each plugin that ran to its results.
	Plugins map[string]PluginResult
}

// PluginResult is the complete unit set of one plugin after a pass: reused
// entries plus fresh successes. Failed units are absent.
type PluginResult struct {
	Fingerprint domain.Fingerprint
	Units       map[string]domain.UnitEntry
}

// Commit replaces the cache contents with pass and writes a snapshot.
// Plugins absent from pass are dropped along with their trackers.
func (c *Cache) Commit(pass Pass) error {
	c.mu.Lock()
	c.files = pass.Files.Clone()
	c.plugins = make(map[string]domain.Fingerprint, len(pass.Plugins))
	c.units = make(map[string]map[string]domain.UnitEntry, len(pass.Plugins))
	for plugin, res := range pass.Plugins {
		c.plugins[plugin] = res.Fingerprint
		c.units[plugin] = maps.Clone(res.Units)
	}
	for plugin := range c.trackers {
		if _, ok := pass.Plugins[plugin]; !ok {
			delete(c.trackers, plugin)
		}
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	return c.store.Save(c.dir, snapshot)
}

// Artifacts returns the current output of every cached unit, keyed by unit path.
func (c *Cache) Artifacts() map[string][]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]byte)
	for _, units := range c.units {
		for path, u := range units {
			out[path] = u.Output
		}
	}
	return out
}

// Reset forgets everything, in memory and on disk.
func (c *Cache) Reset() error {
	c.mu.Lock()
	c.files = nil
	c.plugins = make(map[string]domain.Fingerprint)
	c.units = make(map[string]map[string]domain.UnitEntry)
	c.trackers = make(map[string]*depgraph.Tracker)
	c.mu.Unlock()

	return c.store.Remove(c.dir, c.program)
}

func (c *Cache) snapshotLocked() *domain.Snapshot {
	s := domain.NewSnapshot(c.program)
	s.Files = c.files.Clone()
	maps.Copy(s.Plugins, c.plugins)
	for plugin, units := range c.units {
		s.Units[plugin] = maps.Clone(units)
	}
	return s
}
