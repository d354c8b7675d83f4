package depgraph

import "slices"

// Dependencies returns the ordered files of root's last compilation.
// This is exported for testing purposes only.
func (t *Tracker) Dependencies(root string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Clone(t.deps[root])
}
