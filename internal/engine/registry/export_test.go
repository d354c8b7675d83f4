package registry

import "go.trai.ch/kiln/internal/core/ports"

// Plugin returns the plugin object behind the instance.
// This is exported for testing purposes only.
func (i *Instance) Plugin() ports.Plugin { return i.plugin }

// Live returns the instance currently published for name.
// This is exported for testing purposes only.
func (r *Registry) Live(name string) (*Instance, bool) { return r.lookup(name) }

// Publish exports publish for testing.
func (r *Registry) Publish(inst *Instance) *Instance { return r.publish(inst) }

// NewInstance exports newInstance for testing.
var NewInstance = newInstance
