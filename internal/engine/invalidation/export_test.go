package invalidation

// Step returns the step planned for plugin.
// This is exported for testing purposes only.
func (p Plan) Step(plugin string) (Step, bool) {
	for _, s := range p.Steps {
		if s.Plugin == plugin {
			return s, true
		}
	}
	return Step{}, false
}

// Retired returns the roots plugin retires in this pass.
// This is exported for testing purposes only.
func (p Plan) Retired(plugin string) []string {
	s, _ := p.Step(plugin)
	return s.Retired
}
