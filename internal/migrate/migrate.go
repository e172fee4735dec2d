// Package migrate provides store migration functionality using Goose.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tarven-note/tarven-core/internal/database"
	"github.com/tarven-note/tarven-core/migrations/property"
	"github.com/tarven-note/tarven-core/migrations/topology"
)

// Module provides migration dependencies and applies both stores' schemas on
// startup.
var Module = fx.Options(
	fx.Provide(func() (*zap.Logger, error) { return zap.NewProduction() }),
	fx.Provide(NewMigrator),
	fx.Invoke(func(m *Migrator) error {
		return m.Up(context.Background())
	}),
)

// Migrator applies the embedded schema migrations of both stores.
type Migrator struct {
	topo   *database.TopologyDB
	prop   *database.PropertyDB
	logger *zap.Logger
}

// NewMigrator creates a new Migrator instance.
func NewMigrator(topo *database.TopologyDB, prop *database.PropertyDB, logger *zap.Logger) *Migrator {
	return &Migrator{
		topo:   topo,
		prop:   prop,
		logger: logger.Named("migrator"),
	}
}

// Up runs all pending migrations on both stores, topology first.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.upStore(ctx, "topology", topology.FS, m.topo.DB.DB); err != nil {
		return err
	}
	return m.upStore(ctx, "property", property.FS, m.prop.DB.DB)
}

func (m *Migrator) upStore(ctx context.Context, name string, fsys fs.FS, db *sql.DB) error {
	m.logger.Info("running store migrations", zap.String("store", name))

	// Goose keeps package-level state; Up only runs from startup,
	// sequentially, so resetting it per store is safe.
	goose.SetBaseFS(fsys)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run %s migrations: %w", name, err)
	}

	m.logger.Info("migrations completed successfully", zap.String("store", name))
	return nil
}
