package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marketsquare/orders-api/internal/config"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":      "postgres://localhost/orders",
		"REDIS_URL":         "redis://localhost:6379",
		"PORT":              "",
		"TAX_COUNTRY":       "",
		"RATE_LIMIT_WINDOW": "",
		"RATE_LIMIT_MAX":    "",
		"DB_AUTO_MIGRATE":   "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "Australia", cfg.TaxCountry)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.True(t, cfg.AutoMigrate)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":         "postgres://localhost/orders",
		"REDIS_URL":            "redis://localhost:6379",
		"PORT":                 "9090",
		"TAX_COUNTRY":          "New Zealand",
		"RATE_LIMIT_WINDOW":    "30s",
		"RATE_LIMIT_MAX":       "10",
		"CORS_ALLOWED_ORIGINS": "https://shop.example.com, https://admin.example.com",
		"DB_AUTO_MIGRATE":      "false",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "New Zealand", cfg.TaxCountry)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	require.Equal(t, 10, cfg.RateLimitMax)
	require.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	require.False(t, cfg.AutoMigrate)
}
