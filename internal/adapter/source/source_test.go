package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	cfg := adapter.DefaultConfig()
	_, err := NewCatalog(cfg, nil)
	assert.Error(t, err, "token is required")

	cfg.Catalog.Token = "abc"
	catalog, err := NewCatalog(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, catalog)
}

func TestNewCounterStore(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		cfg := adapter.DefaultConfig()
		cfg.Analytics.Backend = adapter.AnalyticsNone
		store, err := NewCounterStore(cfg, nil)
		require.NoError(t, err)
		assert.Nil(t, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := adapter.DefaultConfig()
		cfg.Analytics.DBPath = filepath.Join(t.TempDir(), "nested", "analytics.db")
		store, err := NewCounterStore(cfg, nil)
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.NoError(t, store.Close())
	})

	t.Run("appwrite", func(t *testing.T) {
		cfg := adapter.DefaultConfig()
		cfg.Analytics.Backend = adapter.AnalyticsAppwrite
		_, err := NewCounterStore(cfg, nil)
		assert.Error(t, err, "ids are required")

		cfg.Analytics.ProjectID = "p"
		cfg.Analytics.DatabaseID = "d"
		cfg.Analytics.CollectionID = "c"
		store, err := NewCounterStore(cfg, nil)
		require.NoError(t, err)
		assert.NoError(t, store.Close())
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := adapter.DefaultConfig()
		cfg.Analytics.Backend = "redis"
		_, err := NewCounterStore(cfg, nil)
		assert.Error(t, err)
	})
}

func TestPromptToken_FromPipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte("  secret-token \n"), 0600))
	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()

	var out bytes.Buffer
	token, err := PromptToken(in, &out)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)
	assert.Contains(t, out.String(), "Token:")
}

func TestPromptToken_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))
	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()

	_, err = PromptToken(in, &bytes.Buffer{})
	assert.Error(t, err)
}
