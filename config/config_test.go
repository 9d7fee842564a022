package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Process()
		require.NoError(t, err)
		require.Equal(t, "https://fakestoreapi.com", cfg.CatalogAPIURL)
		require.Equal(t, ":8080", cfg.HTTPPort)
		require.Equal(t, "memory", cfg.SessionBackend)
		require.Equal(t, 12*time.Hour, cfg.SessionTTL)
		require.Equal(t, "catalog.mutations", cfg.KafkaTopic)
		require.Empty(t, cfg.KafkaBrokers)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("CATALOG_API_URL", "http://localhost:9999")
		t.Setenv("SESSION_BACKEND", "redis")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

		cfg, err := Process()
		require.NoError(t, err)
		require.Equal(t, "http://localhost:9999", cfg.CatalogAPIURL)
		require.Equal(t, "redis", cfg.SessionBackend)
		require.Equal(t, 30*time.Minute, cfg.SessionTTL)
		require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
		require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	})

	t.Run("InvalidDuration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "soon")
		_, err := Process()
		require.Error(t, err)
	})
}
