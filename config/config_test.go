package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: "9000"
mongo:
  uri: mongodb://db:27017
  dbName: fromfile
jwt:
  secret: file-secret
  expiration: 2h
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("MONGO_DBNAME", "fromenv")
	t.Setenv("GOOGLE_CLIENT_ID", "gid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "gsecret")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "fromenv", cfg.Mongo.DBName)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL())
	assert.True(t, cfg.OAuth.Google.Enabled())
	assert.False(t, cfg.OAuth.GitHub.Enabled())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "none", cfg.Geocache.Driver)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 10*time.Second, cfg.Maps.Timeout)
}

func TestJWTConfig_TTLFallback(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, JWTConfig{Expiration: "soon"}.TTL())
	assert.Equal(t, 7*24*time.Hour, JWTConfig{}.TTL())
	assert.Equal(t, 30*time.Minute, JWTConfig{Expiration: "30m"}.TTL())
}

func TestValidate_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrJWTSecretMissing)

	cfg.JWT.Secret = "   "
	assert.ErrorIs(t, cfg.Validate(), ErrJWTSecretMissing)

	cfg.JWT.Secret = "s3cr3t"
	assert.NoError(t, cfg.Validate())
}

func TestShippedConfigHasNoSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig(".")
	require.NoError(t, err)
	assert.Empty(t, cfg.JWT.Secret)
	assert.ErrorIs(t, cfg.Validate(), ErrJWTSecretMissing)
}
