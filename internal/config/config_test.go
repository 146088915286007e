package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.HTTP.Port)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxUploadBytes)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "craigslist", cfg.Mongo.Database)
	assert.Equal(t, "LISTINGS", cfg.NATS.Stream)
	assert.Equal(t, "listings.image.process", cfg.NATS.Subject)
	assert.Equal(t, "listing.events", cfg.Redis.BroadcastChannel)
	assert.Equal(t, "listing-images", cfg.MinIO.Bucket)
	assert.True(t, cfg.Reconcile.Enabled)
	assert.Equal(t, time.Minute, cfg.Reconcile.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Reconcile.StaleSkew)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`
http:
  port: "7000"
mongo:
  database: "listings_test"
reconcile:
  enabled: false
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), raw, 0o644))

	viper.Reset()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.HTTP.Port)
	assert.Equal(t, "listings_test", cfg.Mongo.Database)
	assert.False(t, cfg.Reconcile.Enabled)
	// Untouched keys keep their defaults.
	assert.Equal(t, "LISTINGS", cfg.NATS.Stream)
}

func TestLoadConfig_JWTSecretFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	viper.Reset()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
}
