package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "tienda-api", cfg.App.Name)
	assert.Equal(t, config.StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 3*time.Second, cfg.Inventory.LockTimeout)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, int64(10), cfg.Inventory.LowStockThreshold)
	assert.Equal(t, 60*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.App.SwaggerEnabled)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOCK_TIMEOUT_MS", "250")
	t.Setenv("LOW_STOCK_THRESHOLD", "4")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SWAGGER_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Inventory.LockTimeout)
	assert.Equal(t, int64(4), cfg.Inventory.LowStockThreshold)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.App.SwaggerEnabled)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "tienda", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/tienda?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
