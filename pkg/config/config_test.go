package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ocr-invoice-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Enterprise Document Integration Service", cfg.App.Name)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "/api/v1", cfg.HTTP.APIPrefix)
	assert.Equal(t, 50, cfg.Pagination.DefaultSize)
	assert.Equal(t, 100, cfg.Pagination.MaxSize)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PAGE_DEFAULT_SIZE", "10")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.DB.SQLitePath)
	assert.Equal(t, ":9090", cfg.HTTP.Addr()[len(cfg.HTTP.Host):])
	assert.Equal(t, 10, cfg.Pagination.DefaultSize)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_PaginacionInconsistente(t *testing.T) {
	t.Setenv("PAGE_DEFAULT_SIZE", "500")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgresql://x"
	assert.Equal(t, "postgresql://x", c.ConnectionString())
}
