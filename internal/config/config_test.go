package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/threestatement/internal/coa"
)

var envKeys = []string{
	"APP_ENV", "DATABASE_URL", "API_ADDR", "GRPC_ADDR", "LOG_LEVEL",
	"API_MAX_BODY_BYTES", "REDIS_ADDR", "API_RATE_LIMIT_CAPACITY",
	"API_RATE_LIMIT_REFILL_PER_SEC", "CONFIG_FILE",
	"API_TLS_CERT", "API_TLS_KEY", "API_TLS_CA",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresEnv(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ENV")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "sqlite://tsm.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.APIAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 20, cfg.RateLimitCapacity)
	assert.Equal(t, 10.0, cfg.RateLimitRefillPerSec)
	assert.Equal(t, coa.DefaultCodes(), cfg.File.Engine)
	assert.Equal(t, "base", cfg.File.Forecast.DefaultScenario)
	assert.False(t, cfg.File.TLS.Enabled())
}

func TestProductionRequiresPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "sqlite://tsm.db")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/tsm")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "sqlite://tsm.db")

	t.Setenv("API_RATE_LIMIT_CAPACITY", "lots")
	_, err := Load()
	assert.ErrorContains(t, err, "API_RATE_LIMIT_CAPACITY")

	t.Setenv("API_RATE_LIMIT_CAPACITY", "")
	t.Setenv("LOG_LEVEL", "chatty")
	_, err = Load()
	assert.ErrorContains(t, err, "LOG_LEVEL")

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("API_TLS_CERT", "/etc/tsm/server.crt")
	_, err = Load()
	assert.ErrorContains(t, err, "API_TLS_KEY")
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "tsm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  cash_account_code: "1100"
database:
  max_open_conns: 8
forecast:
  default_scenario: downside
`), 0o644))

	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "sqlite://tsm.db")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1100", cfg.File.Engine.Cash)
	assert.Equal(t, coa.DefaultRetainedEarningsCode, cfg.File.Engine.RetainedEarnings)
	assert.Equal(t, 8, cfg.File.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.File.Database.QueryTimeoutSeconds)
	assert.Equal(t, "downside", cfg.File.Forecast.DefaultScenario)
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsm.yaml")
	f := DefaultFile()
	f.TLS.CertFile = "server.crt"
	f.TLS.KeyFile = "server.key"
	require.NoError(t, SaveFile(path, f))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}
