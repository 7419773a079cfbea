package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults without file", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())

		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, "database", cfg.Session.Store)
		assert.Equal(t, "session_id", cfg.Session.CookieName)
		assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
		assert.Equal(t, 30, cfg.CoinGecko.PerPage)
		assert.Equal(t, 1, cfg.CoinGecko.MaxRetries)
		assert.Equal(t, []string{"stderr"}, cfg.Logger.Outputs)
	})

	t.Run("File overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte(`
server:
  port: 9090
database:
  driver: postgres
  dsn: "host=db user=app dbname=portfolio"
session:
  store: redis
  ttl: 2h
logger:
  level: debug
  format: json
`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o600))

		cfg, err := LoadConfig(dir)

		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "redis", cfg.Session.Store)
		assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
		assert.Equal(t, "json", cfg.Logger.Format)
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "4242")

		cfg, err := LoadConfig(t.TempDir())

		require.NoError(t, err)
		assert.Equal(t, 4242, cfg.Server.Port)
	})

	t.Run("Unknown driver is rejected", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mysql")

		_, err := LoadConfig(t.TempDir())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}
