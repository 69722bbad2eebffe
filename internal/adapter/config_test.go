package adapter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Search.DebounceMS)
	assert.True(t, cfg.Search.RankResults)
	assert.Equal(t, 10, cfg.Search.PopularLimit)
	assert.Equal(t, AnalyticsSQLite, cfg.Analytics.Backend)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.Catalog.BaseURL)
	assert.False(t, cfg.IsConfigured())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
catalog:
  token: abc
search:
  debounce_ms: 250
analytics:
  backend: appwrite
  project_id: p
  database_id: d
  collection_id: c
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfigFrom(viper.New(), dir)
	require.NoError(t, err)

	assert.True(t, cfg.IsConfigured())
	assert.Equal(t, 250, cfg.Search.DebounceMS)
	assert.True(t, cfg.Search.RankResults, "unset keys keep their defaults")
	assert.Equal(t, AnalyticsAppwrite, cfg.Analytics.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MARQUEE_CATALOG_TOKEN", "from-env")
	t.Setenv("MARQUEE_SEARCH_RANK_RESULTS", "false")

	cfg, err := LoadConfigFrom(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Catalog.Token)
	assert.False(t, cfg.Search.RankResults)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("catalog: [unclosed"), 0644))

	_, err := LoadConfigFrom(viper.New(), dir)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Catalog.Token = "saved-token"
	cfg.Search.PopularLimit = 3

	require.NoError(t, SaveConfigTo(viper.New(), cfg, dir))

	loaded, err := LoadConfigFrom(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "saved-token", loaded.Catalog.Token)
	assert.Equal(t, 3, loaded.Search.PopularLimit)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analytics.Backend = AnalyticsAppwrite
	assert.Error(t, cfg.Validate())

	cfg.Analytics.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg.Analytics.Backend = AnalyticsNone
	assert.NoError(t, cfg.Validate())
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "marquee.log")
	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("hello")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
