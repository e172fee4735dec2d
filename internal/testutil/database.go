// Package testutil provides in-memory store fixtures for package tests. Each
// call opens a pair of private SQLite databases and applies the embedded
// migrations, so tests get the real schema without touching disk.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tarven-note/tarven-core/internal/database"
	"github.com/tarven-note/tarven-core/migrations/property"
	"github.com/tarven-note/tarven-core/migrations/topology"
)

var dbSeq atomic.Int64

// TestStores holds the migrated store pair for one test.
type TestStores struct {
	Topo *database.TopologyDB
	Prop *database.PropertyDB
}

// NewLogger returns a quiet logger for tests.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// SetupStores opens a fresh topology/property store pair with migrations
// applied. Both are torn down via t.Cleanup.
func SetupStores(t *testing.T) *TestStores {
	t.Helper()

	seq := dbSeq.Add(1)
	topo := openStore(t, fmt.Sprintf("test_topology_%d", seq), topology.FS)
	prop := openStore(t, fmt.Sprintf("test_property_%d", seq), property.FS)

	return &TestStores{
		Topo: &database.TopologyDB{DB: topo},
		Prop: &database.PropertyDB{DB: prop},
	}
}

func openStore(t *testing.T, name string, migrations fs.FS) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxIdleTime(0)

	if err := sqldb.Ping(); err != nil {
		t.Fatalf("ping %s: %v", name, err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		t.Fatalf("set goose dialect: %v", err)
	}
	if err := goose.UpContext(context.Background(), sqldb, "."); err != nil {
		t.Fatalf("migrate %s: %v", name, err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}
