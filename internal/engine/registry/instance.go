package registry

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// Instance is one live plugin object together with its invocation counter.
type Instance struct {
	def         domain.PluginDef
	fingerprint domain.Fingerprint
	plugin      ports.Plugin
	sink        ports.EventSink

	seqMu sync.Mutex
	seq   int

	// serial is held for the whole batch when the plugin is not concurrent.
	serial sync.Mutex
}

func newInstance(def domain.PluginDef, fp domain.Fingerprint, plugin ports.Plugin, sink ports.EventSink) *Instance {
	return &Instance{def: def, fingerprint: fp, plugin: plugin, sink: sink}
}

// Fingerprint returns the plugin-source fingerprint the instance was built from.
func (i *Instance) Fingerprint() domain.Fingerprint { return i.fingerprint }

// Invoke records one invocation over files on behalf of program and runs the batch.
// Sequence numbers start at 1 and strictly increase for the lifetime of the instance.
// An empty file list is still an invocation.
func (i *Instance) Invoke(
	ctx context.Context,
	program string,
	files []string,
	run func(ctx context.Context, plugin ports.Plugin) error,
) (domain.Invocation, error) {
	if !i.def.Concurrent {
		i.serial.Lock()
		defer i.serial.Unlock()
	}

	i.seqMu.Lock()
	i.seq++
	inv := domain.Invocation{Plugin: i.def.Name, Seq: i.seq, Files: slices.Clone(files)}
	i.seqMu.Unlock()

	if i.sink != nil {
		i.sink.Emit(domain.InvocationEvent{Program: program, Invocation: inv})
	}

	return inv, run(ctx, i.plugin)
}
