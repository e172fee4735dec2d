// Package tarvencore assembles the campaign knowledge-graph engine. Embedders
// mount Module into an fx application and consume the campaigns and graph
// services; both stores are opened, migrated and closed by the fx lifecycle.
package tarvencore

import (
	"go.uber.org/fx"

	"github.com/tarven-note/tarven-core/domain/campaigns"
	"github.com/tarven-note/tarven-core/domain/graph"
	"github.com/tarven-note/tarven-core/domain/vocab"
	"github.com/tarven-note/tarven-core/internal/config"
	"github.com/tarven-note/tarven-core/internal/database"
	"github.com/tarven-note/tarven-core/internal/migrate"
	"github.com/tarven-note/tarven-core/pkg/logger"
)

// Module is the full engine wiring.
var Module = fx.Options(
	fx.Provide(logger.NewLogger),
	config.Module,
	database.Module,
	migrate.Module,
	vocab.Module,
	campaigns.Module,
	graph.Module,
)
