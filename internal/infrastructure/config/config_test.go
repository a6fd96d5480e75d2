package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 100, cfg.Cache.MaxSize)
	assert.False(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.Redis.TTL)
	assert.Equal(t, "https://api.bigdatacloud.net", cfg.Geocoder.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, 3, cfg.OpenRouter.RecipeCount)
	assert.Equal(t, 0.6, cfg.Vision.MinScore)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvironmentAliases(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-123456789")
	t.Setenv("GOOGLE_VISION_API_KEY", "vision-abcdefgh")
	t.Setenv("RECIPE_CACHE_SIZE", "25")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("PORT", "9090")
	t.Setenv("DEDUP_WINDOW", "3s")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sk-or-123456789", cfg.OpenRouter.APIKey)
	assert.Equal(t, "vision-abcdefgh", cfg.Vision.APIKey)
	assert.Equal(t, 25, cfg.Cache.MaxSize)
	assert.True(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.DedupWindow)
}

func TestLoad_PrefixedEnvironment(t *testing.T) {
	t.Setenv("APP_OPENROUTER_MODEL", "anthropic/claude-3-haiku")
	t.Setenv("APP_GEOCODER_TIMEOUT", "2s")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "anthropic/claude-3-haiku", cfg.OpenRouter.Model)
	assert.Equal(t, 2*time.Second, cfg.Geocoder.Timeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero cache size", "RECIPE_CACHE_SIZE", "0"},
		{"zero geocoder timeout", "APP_GEOCODER_TIMEOUT", "0s"},
		{"zero recipe count", "APP_OPENROUTER_RECIPE_COUNT", "0"},
		{"zero rate limit", "RATE_LIMIT_REQUESTS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := load(viper.New())
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey(""))
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-o...6789", MaskAPIKey("sk-or-123456789"))
}
