package graph

import "go.uber.org/fx"

// Module wires the graph domain.
var Module = fx.Module("graph",
	fx.Provide(
		NewTopologyRepository,
		NewPropertyRepository,
		NewService,
	),
)
