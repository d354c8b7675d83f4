// Package depgraph tracks which root files were built from which other files.
package depgraph

import (
	"maps"
	"slices"
	"sync"
)

// Tracker records, per root, the ordered files its last compilation consumed,
// and answers the reverse question of which roots a file feeds into.
// One Tracker exists per (program, plugin).
type Tracker struct {
	mu sync.RWMutex
	// deps maps a root to the ordered files of its last compilation.
	deps map[string][]string
	// dependents maps a file to the set of roots whose edges include it.
	dependents map[string]map[string]struct{}
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		deps:       make(map[string][]string),
		dependents: make(map[string]map[string]struct{}),
	}
}

// RecordDependencies replaces the root's edge set with files.
// Files no longer listed stop being dependents of root.
func (t *Tracker) RecordDependencies(root string, files []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.unlinkLocked(root)
	ordered := dedupe(files)
	t.deps[root] = ordered
	for _, f := range ordered {
		set, ok := t.dependents[f]
		if !ok {
			set = make(map[string]struct{})
			t.dependents[f] = set
		}
		set[root] = struct{}{}
	}
}

// AffectedRoots returns every root whose current edges include file, sorted.
func (t *Tracker) AffectedRoots(file string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.dependents[file]))
}

// NewFileDiscovered registers root with an empty edge set.
// It reports true if the root was not known before.
func (t *Tracker) NewFileDiscovered(root string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.deps[root]; ok {
		return false
	}
	t.deps[root] = nil
	return true
}

// RemoveFile drops file from every edge set and retires it if it was a root.
// It returns the roots, other than file itself, that referenced it.
func (t *Tracker) RemoveFile(file string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var referencing []string
	for root := range t.dependents[file] {
		if root == file {
			continue
		}
		referencing = append(referencing, root)
		t.deps[root] = slices.DeleteFunc(t.deps[root], func(f string) bool { return f == file })
	}
	delete(t.dependents, file)

	if _, ok := t.deps[file]; ok {
		t.unlinkLocked(file)
		delete(t.deps, file)
	}

	slices.Sort(referencing)
	return referencing
}

// Retire forgets root and its edges without touching other roots.
func (t *Tracker) Retire(root string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.unlinkLocked(root)
	delete(t.deps, root)
}

// Roots returns every known root, sorted.
func (t *Tracker) Roots() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.deps))
}

// HasRoot reports whether root is known.
func (t *Tracker) HasRoot(root string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.deps[root]
	return ok
}

// Export returns a copy of every root's edges.
func (t *Tracker) Export() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string][]string, len(t.deps))
	for root, files := range t.deps {
		out[root] = slices.Clone(files)
	}
	return out
}

// Import replaces the tracker's contents with edges.
func (t *Tracker) Import(edges map[string][]string) {
	t.mu.Lock()
	t.deps = make(map[string][]string, len(edges))
	t.dependents = make(map[string]map[string]struct{})
	t.mu.Unlock()

	for root, files := range edges {
		t.RecordDependencies(root, files)
	}
}

func (t *Tracker) unlinkLocked(root string) {
	for _, f := range t.deps[root] {
		set := t.dependents[f]
		delete(set, root)
		if len(set) == 0 {
			delete(t.dependents, f)
		}
	}
}

func dedupe(files []string) []string {
	if len(files) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
