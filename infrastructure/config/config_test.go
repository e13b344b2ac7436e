package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// clearEnv blanks every variable LoadConfig reads, so tests are not affected
// by the surrounding environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "SERVER_ADDRESS", "ENVIRONMENT", "LOG_LEVEL",
		"ENABLE_CORS", "JWT_SECRET", "JWT_ISSUER", "REFRESH_INTERVAL",
		"ERROR_BACKOFF", "UPSTREAM_TIMEOUT", "MARKET_PAGES",
		"MARKET_PAGE_SIZE", "FEED_URLS", "ARXIV_CATEGORIES",
		"INSIGHT_CAP", "INSIGHT_TRIM",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.EnableCORS)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Minute, cfg.ErrorBackoff)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 2, cfg.MarketPages)
	assert.Equal(t, 250, cfg.MarketPageSize)
	assert.Equal(t, 20, cfg.InsightCap)
	assert.Equal(t, 10, cfg.InsightTrim)
	assert.Empty(t, cfg.SourceFile())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("ERROR_BACKOFF", "2m")
	t.Setenv("MARKET_PAGES", "5")
	t.Setenv("FEED_URLS", "https://a.example/rss, https://b.example/rss")
	t.Setenv("ARXIV_CATEGORIES", "cs.AI,cs.CR")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 2*time.Minute, cfg.ErrorBackoff)
	assert.Equal(t, 5, cfg.MarketPages)
	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/rss"}, cfg.FeedURLs)
	assert.Equal(t, []string{"cs.AI", "cs.CR"}, cfg.ArxivCategories)
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server_address: ":7000"
refresh_interval: "90s"
error_backoff: "3m"
insight_cap: 30
insight_trim: 5
feed_urls:
  - https://file.example/rss
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ServerAddress)
	assert.Equal(t, 90*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 3*time.Minute, cfg.ErrorBackoff)
	assert.Equal(t, 30, cfg.InsightCap)
	assert.Equal(t, 5, cfg.InsightTrim)
	assert.Equal(t, []string{"https://file.example/rss"}, cfg.FeedURLs)
	assert.Equal(t, path, cfg.SourceFile())
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadConfig_EnvWinsOverFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`server_address: ":7000"`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_ADDRESS", ":9999")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ServerAddress)
}

func TestLoadConfig_InvalidDurationInFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`refresh_interval: "soon"`), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh_interval")
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			ServerAddress:   ":8080",
			Environment:     "development",
			RefreshInterval: 5 * time.Minute,
			ErrorBackoff:    10 * time.Minute,
			MarketPages:     2,
			MarketPageSize:  250,
			UpstreamRate:    1.0,
			InsightCap:      20,
			InsightTrim:     10,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad environment", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "local"
		assert.Error(t, cfg.Validate())
	})

	t.Run("refresh interval too short", func(t *testing.T) {
		cfg := base()
		cfg.RefreshInterval = 500 * time.Millisecond
		assert.Error(t, cfg.Validate())
	})

	t.Run("backoff shorter than interval", func(t *testing.T) {
		cfg := base()
		cfg.ErrorBackoff = time.Minute
		assert.Error(t, cfg.Validate())
	})

	t.Run("trim exceeds cap", func(t *testing.T) {
		cfg := base()
		cfg.InsightTrim = 30
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires JWT secret", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		assert.Error(t, cfg.Validate())

		cfg.JWTSecret = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("too many market pages", func(t *testing.T) {
		cfg := base()
		cfg.MarketPages = 11
		assert.Error(t, cfg.Validate())
	})
}

func TestDynamic_Update(t *testing.T) {
	dynamic := NewDynamic(&Config{
		RefreshInterval: 5 * time.Minute,
		ErrorBackoff:    10 * time.Minute,
	})

	require.Equal(t, 5*time.Minute, dynamic.RefreshInterval())
	require.Equal(t, 10*time.Minute, dynamic.ErrorBackoff())

	dynamic.update(time.Minute, 2*time.Minute)
	assert.Equal(t, time.Minute, dynamic.RefreshInterval())
	assert.Equal(t, 2*time.Minute, dynamic.ErrorBackoff())

	// Out-of-bounds values are ignored, keeping the last good settings.
	dynamic.update(100*time.Millisecond, 30*time.Second)
	assert.Equal(t, time.Minute, dynamic.RefreshInterval())
	assert.Equal(t, 2*time.Minute, dynamic.ErrorBackoff())
}

func TestWatcher_ReloadsIntervals(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refresh_interval: \"5m\"\nerror_backoff: \"10m\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	dynamic := NewDynamic(cfg)
	watcher, err := NewWatcher(cfg, dynamic, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, watcher)
	watcher.Start()
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("refresh_interval: \"30s\"\nerror_backoff: \"1m\"\n"), 0o600))

	require.Eventually(t, func() bool {
		return dynamic.RefreshInterval() == 30*time.Second
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, time.Minute, dynamic.ErrorBackoff())
}

func TestNewWatcher_NilWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	watcher, err := NewWatcher(cfg, NewDynamic(cfg), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, watcher)
}
