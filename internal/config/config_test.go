package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	os.Unsetenv("TOPOLOGY_DB_PATH")
	os.Unsetenv("PROPERTY_DB_PATH")

	cfg, err := NewConfig(slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "file:topology?mode=memory&cache=shared", cfg.Topology.DSN("topology"))
	assert.Equal(t, "file:property?mode=memory&cache=shared", cfg.Property.DSN("property"))
}

func TestNewConfigStorePaths(t *testing.T) {
	t.Setenv("TOPOLOGY_DB_PATH", "/var/lib/tarven/topology.db")
	t.Setenv("PROPERTY_DB_PATH", "/var/lib/tarven/property.db")

	cfg, err := NewConfig(slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/tarven/topology.db", cfg.Topology.Path)
	assert.Contains(t, cfg.Topology.DSN("topology"), "file:/var/lib/tarven/topology.db")
	assert.Contains(t, cfg.Property.DSN("property"), "property.db")
}
