package vocab

import "go.uber.org/fx"

// Module wires the canonicalizer.
var Module = fx.Module("vocab",
	fx.Provide(NewCanonicalizer),
)
