package config

import (
	"testing"

	apperrors "graphite/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("AUTO_CONNECT_SCOPE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, ConnectScopeFull, cfg.AutoConnectScope)
	assert.False(t, cfg.UsesNeo4j())
	assert.Equal(t, 800.0, cfg.LayoutWidth)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "NEO4J")
	t.Setenv("AUTO_CONNECT_SCOPE", "batch")
	t.Setenv("LAYOUT_FPS", "60")
	t.Setenv("SEED_DEMO", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UsesNeo4j())
	assert.Equal(t, ConnectScopeBatch, cfg.AutoConnectScope)
	assert.Equal(t, 60, cfg.LayoutFPS)
	assert.False(t, cfg.SeedDemo)
}

func TestValidate_Rejects(t *testing.T) {
	base := Config{
		StoreBackend:     StoreMemory,
		AutoConnectScope: ConnectScopeFull,
		DefaultViewerID:  "vc-1",
		LayoutWidth:      800,
		LayoutHeight:     600,
		LayoutFPS:        30,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.StoreBackend = "postgres"
	assert.Error(t, bad.Validate())

	bad = base
	bad.AutoConnectScope = "world"
	assert.Error(t, bad.Validate())

	bad = base
	bad.StoreBackend = StoreNeo4j
	bad.Neo4jURI = ""
	err := bad.Validate()
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
	assert.ErrorContains(t, err, "NEO4J_URI")

	bad = base
	bad.DefaultViewerID = ""
	assert.True(t, apperrors.IsErrorType(bad.Validate(), apperrors.ErrorTypeConfig))

	bad = base
	bad.LayoutFPS = 0
	assert.Error(t, bad.Validate())
}
