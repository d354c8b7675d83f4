package events

import "go.trai.ch/kiln/internal/core/domain"

// Invocations returns the recorded invocations for plugin, or all invocations when plugin is empty.
// This is exported for testing purposes only.
func (r *Recorder) Invocations(plugin string) []domain.Invocation {
	var out []domain.Invocation
	for _, e := range r.Events() {
		if inv, ok := e.(domain.InvocationEvent); ok && (plugin == "" || inv.Plugin == plugin) {
			out = append(out, inv.Invocation)
		}
	}
	return out
}
