// Package plugins provides the built-in compiler plugin kinds.
package plugins

import (
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Built-in plugin kinds.
const (
	KindCopy    = "copy"
	KindImports = "imports"
	KindCommand = "command"
)

// Factories returns a factory for every built-in kind.
func Factories() []ports.PluginFactory {
	return []ports.PluginFactory{
		factory{kind: KindCopy, build: newCopy},
		factory{kind: KindImports, build: newImports},
		factory{kind: KindCommand, build: newCommand},
	}
}

type factory struct {
	kind  string
	build func(def domain.PluginDef) (ports.Plugin, error)
}

func (f factory) Kind() string { return f.kind }

func (f factory) New(def domain.PluginDef) (ports.Plugin, error) {
	return f.build(def)
}

// checkOptions rejects option keys the kind does not understand.
func checkOptions(def domain.PluginDef, allowed ...string) error {
	for key := range def.Options {
		if !slices.Contains(allowed, key) {
			return zerr.With(zerr.With(zerr.New("unknown plugin option"), "plugin", def.Name), "option", key)
		}
	}
	return nil
}
