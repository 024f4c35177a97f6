package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gossip/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FERNET_KEY", "test-key")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "gossip", cfg.AppName)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTPAddr())
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:3000")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FERNET_KEY", "test-key")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/gossip")
	t.Setenv("HTTP_PORT", "8080")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FERNET_KEY", "test-key")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecrets(t *testing.T) {
	// t.Setenv records the originals for cleanup; the vars must be absent,
	// not merely empty, for required to trip
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("FERNET_KEY", "x")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("FERNET_KEY")

	_, err := config.Load()
	assert.Error(t, err)
}
