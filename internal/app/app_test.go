package app

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/threestatement/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "app.db"),
		LogLevel:    "info",
		File:        config.DefaultFile(),
	}
}

func TestOpenSeedsAndWires(t *testing.T) {
	var logs bytes.Buffer
	cfg := testConfig(t)
	cfg.File.Forecast.DefaultScenario = "plan"

	a, err := Open(context.Background(), cfg, NewLogger(&logs, slog.LevelInfo))
	require.NoError(t, err)

	chart, err := a.Store.ListMasterAccounts(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, chart)
	assert.Equal(t, "plan", a.Forecasts.DefaultScenario())
	assert.Equal(t, cfg.File.Engine, a.Statements.Codes())
	assert.Contains(t, logs.String(), `"msg":"master chart seeded"`)

	require.NoError(t, a.Close())
	logs.Reset()
	a, err = Open(context.Background(), cfg, NewLogger(&logs, slog.LevelInfo))
	require.NoError(t, err)
	defer a.Close()
	assert.NotContains(t, logs.String(), "master chart seeded")
}

func TestOpenRejectsUnknownEngineCodes(t *testing.T) {
	cfg := testConfig(t)
	cfg.File.Engine.Cash = "9999"

	_, err := Open(context.Background(), cfg, NewLogger(&bytes.Buffer{}, slog.LevelInfo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine codes")
}
