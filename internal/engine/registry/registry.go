// Package registry owns the live plugin instances shared by every program in the process.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Registry hands out one live Instance per plugin name, replacing it whenever
// the plugin's source fingerprint changes.
type Registry struct {
	root      string
	factories map[string]ports.PluginFactory
	hasher    ports.Fingerprinter
	sink      ports.EventSink

	mu    sync.Mutex
	live  map[string]*Instance
	group singleflight.Group
}

// New creates a Registry. Plugin source paths are resolved against root.
func New(root string, factories []ports.PluginFactory, hasher ports.Fingerprinter, sink ports.EventSink) *Registry {
	byKind := make(map[string]ports.PluginFactory, len(factories))
	for _, f := range factories {
		byKind[f.Kind()] = f
	}
	return &Registry{
		root:      root,
		factories: byKind,
		hasher:    hasher,
		sink:      sink,
		live:      make(map[string]*Instance),
	}
}

// Fingerprint computes the plugin-source fingerprint of def: the content of
// its declared source files plus its kind and options.
func (r *Registry) Fingerprint(def domain.PluginDef) (domain.Fingerprint, error) {
	sources := make([]string, len(def.Sources))
	for i, src := range def.Sources {
		sources[i] = filepath.Join(r.root, filepath.FromSlash(src))
	}
	filesFP, err := r.hasher.FingerprintFiles(sources)
	if err != nil {
		return "", errors.Join(domain.ErrPluginSourceHashFailed, zerr.With(err, "plugin", def.Name))
	}

	// Map keys are marshalled in sorted order.
	config, err := json.Marshal(struct {
		Kind    string            `json:"kind"`
		Options map[string]string `json:"options"`
	}{def.Kind, def.Options})
	if err != nil {
		return "", errors.Join(domain.ErrPluginSourceHashFailed, zerr.With(err, "plugin", def.Name))
	}

	buf := make([]byte, 0, len(filesFP)+1+len(config))
	buf = append(buf, string(filesFP)...)
	buf = append(buf, 0)
	buf = append(buf, config...)
	return domain.FingerprintBytes(buf), nil
}

// Instance returns the live instance for def, constructing a new one when none
// exists or the plugin-source fingerprint changed. Concurrent callers asking for
// the same plugin observe a single surviving instance. Construction failures are
// not cached.
func (r *Registry) Instance(ctx context.Context, def domain.PluginDef) (*Instance, error) {
	fp, err := r.Fingerprint(def)
	if err != nil {
		return nil, err
	}

	if inst := r.current(def.Name, fp); inst != nil {
		return inst, nil
	}

	v, err, _ := r.group.Do(def.Name+"\x00"+string(fp), func() (any, error) {
		if inst := r.current(def.Name, fp); inst != nil {
			return inst, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		factory, ok := r.factories[def.Kind]
		if !ok {
			return nil, errors.Join(domain.ErrPluginConstruction,
				zerr.With(zerr.With(domain.ErrUnknownPluginKind, "kind", def.Kind), "plugin", def.Name))
		}
		plugin, err := factory.New(def)
		if err != nil {
			return nil, errors.Join(domain.ErrPluginConstruction, zerr.With(err, "plugin", def.Name))
		}

		return r.publish(newInstance(def, fp, plugin, r.sink)), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Instance), nil //nolint:forcetypeassert // the group only ever returns *Instance
}

// publish installs inst unless an instance with the same fingerprint is already
// live, and returns whichever instance callers must use.
func (r *Registry) publish(inst *Instance) *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.live[inst.def.Name]; ok && cur.fingerprint == inst.fingerprint {
		return cur
	}
	r.live[inst.def.Name] = inst
	return inst
}

func (r *Registry) lookup(name string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.live[name]
	return inst, ok
}

func (r *Registry) current(name string, fp domain.Fingerprint) *Instance {
	if inst, ok := r.lookup(name); ok && inst.fingerprint == fp {
		return inst
	}
	return nil
}
