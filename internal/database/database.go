// Package database opens the two store handles the engine runs on: a
// topology store for identity and graph structure, and a property store for
// rich entity attributes. Both are embedded SQLite databases accessed through
// Bun; they are opened at process start and closed by the fx lifecycle, never
// through package-level singletons.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/fx"

	"github.com/tarven-note/tarven-core/internal/config"
	"github.com/tarven-note/tarven-core/pkg/logger"
)

var Module = fx.Module("database",
	fx.Provide(
		NewTopologyDB,
		NewPropertyDB,
	),
)

// TopologyDB is the store of record for entity/edge existence, identity and
// graph structure.
type TopologyDB struct {
	*bun.DB
}

// PropertyDB is the store of record for rich per-entity attributes and alias
// lookups.
type PropertyDB struct {
	*bun.DB
}

// NewTopologyDB opens the topology store.
func NewTopologyDB(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*TopologyDB, error) {
	db, err := open(lc, cfg.Topology, "topology", log.With(logger.Scope("database.topology")))
	if err != nil {
		return nil, fmt.Errorf("open topology store: %w", err)
	}
	return &TopologyDB{DB: db}, nil
}

// NewPropertyDB opens the property store.
func NewPropertyDB(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*PropertyDB, error) {
	db, err := open(lc, cfg.Property, "property", log.With(logger.Scope("database.property")))
	if err != nil {
		return nil, fmt.Errorf("open property store: %w", err)
	}
	return &PropertyDB{DB: db}, nil
}

func open(lc fx.Lifecycle, store config.StoreConfig, name string, log *slog.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, store.DSN(name))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// between the engine's short request-scoped statements.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if store.QueryDebug {
		db.AddQueryHook(&queryLoggingHook{log: log})
	}

	log.Info("store opened", slog.String("dsn", store.DSN(name)))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing store")
			return db.Close()
		},
	})

	return db, nil
}

// queryLoggingHook implements bun.QueryHook for query logging
type queryLoggingHook struct {
	log *slog.Logger
}

func (h *queryLoggingHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLoggingHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)

	if event.Err != nil && event.Err != sql.ErrNoRows {
		h.log.Error("query error",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
			logger.Error(event.Err),
		)
		return
	}

	if duration > 3*time.Second {
		h.log.Warn("slow query",
			slog.String("query", event.Query),
			slog.Duration("duration", duration),
		)
		return
	}

	h.log.Debug("query",
		slog.String("query", event.Query),
		slog.Duration("duration", duration),
	)
}
