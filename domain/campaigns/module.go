package campaigns

import "go.uber.org/fx"

// Module wires the campaigns domain.
var Module = fx.Module("campaigns",
	fx.Provide(
		NewRepository,
		NewService,
	),
)
