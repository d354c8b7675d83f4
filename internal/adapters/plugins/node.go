package plugins

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the built-in plugin factories Graft node.
const NodeID graft.ID = "adapter.plugins"

func init() {
	graft.Register(graft.Node[[]ports.PluginFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) ([]ports.PluginFactory, error) {
			return Factories(), nil
		},
	})
}
