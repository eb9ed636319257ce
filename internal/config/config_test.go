package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/spell-planner/internal/config"
	"github.com/KirkDiggler/spell-planner/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, config.StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, "eq2-spell-planner-data", cfg.Store.Key)
	assert.Equal(t, "assets", cfg.Catalog.Dir)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PLANNER_STORE_BACKEND", "redis")
	t.Setenv("PLANNER_REDIS_ADDR", "cache:6380")
	t.Setenv("PLANNER_CATALOG_BASE_URL", "https://example.test/assets")
	t.Setenv("PLANNER_CATALOG_CLASSES", "warlock,wizard")
	t.Setenv("PLANNER_LOG_LEVEL", "debug")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, config.StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "https://example.test/assets", cfg.Catalog.BaseURL)
	assert.Equal(t, []string{"warlock", "wizard"}, cfg.Catalog.Classes)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PLANNER_SERVER_HTTP_PORT=9090\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("PLANNER_SERVER_HTTP_PORT") })

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PLANNER_STORE_BACKEND", "postgres")
	t.Setenv("PLANNER_LOG_LEVEL", "loud")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}
