package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, PersistenceAsync, cfg.Ingress.Persistence)
	assert.Equal(t, "X-Webhook-Token", cfg.Ingress.TokenHeader)
	assert.False(t, cfg.Ingress.AllowAnonymous)
	assert.Equal(t, defaultRetentionDays, cfg.RetentionDays)
	assert.NotEmpty(t, cfg.DSN)
	assert.NotEmpty(t, cfg.RedisURL)
}

func TestLoadFoldsLegacyAliases(t *testing.T) {
	path := writeConfig(t, `
port: 9000
node_env: production
database_url: user:pass@tcp(db:3306)/hooklog
cors_allowed_origins:
  - example.com
  - "*.example.org"
jwtsecret: legacy-secret
ingress:
  mode: fire-and-forget
  allow_anonymous: true
retention_days: 30
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "user:pass@tcp(db:3306)/hooklog", cfg.DSN)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.AllowedOrigins)
	assert.Equal(t, "legacy-secret", cfg.JWTSecret)
	assert.Equal(t, PersistenceAsync, cfg.Ingress.Persistence, "fire-and-forget folds to async")
	assert.True(t, cfg.Ingress.AllowAnonymous)
	assert.Equal(t, 30, cfg.RetentionDays)
}

func TestLoadCurrentKeysWinOverAliases(t *testing.T) {
	path := writeConfig(t, `
env: production
node_env: development
jwt_secret: current
jwtsecret: legacy
ingress:
  persistence: sync
  mode: async
  token_header: X-Hook-Key
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "current", cfg.JWTSecret)
	assert.Equal(t, PersistenceSync, cfg.Ingress.Persistence)
	assert.Equal(t, "X-Hook-Key", cfg.Ingress.TokenHeader)
}

func TestNormalizeIngressConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  rawIngressConfig
		want string
	}{
		{"empty defaults to async", rawIngressConfig{}, PersistenceAsync},
		{"sync kept", rawIngressConfig{Persistence: "sync"}, PersistenceSync},
		{"case folded", rawIngressConfig{Persistence: " SYNC "}, PersistenceSync},
		{"unknown falls back to async", rawIngressConfig{Persistence: "eventually"}, PersistenceAsync},
		{"legacy mode honored", rawIngressConfig{Mode: "sync"}, PersistenceSync},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeIngressConfig(tt.raw).Persistence)
		})
	}
}

func TestRedisURLAssembly(t *testing.T) {
	path := writeConfig(t, `
redis:
  host: cache.internal
  port: 6380
  password: s3cret
  db: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://:s3cret@cache.internal:6380/2", cfg.RedisURL)
}
