package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at path, folds legacy aliases, applies defaults
// and returns a normalized AppConfig. A missing file yields pure defaults.
func Load(path string) (*AppConfig, error) {
	raw := rawAppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &AppConfig{
		Port:           raw.Port,
		Database:       normalizeDatabaseConfig(raw.Database),
		Redis:          normalizeRedisConfig(raw.Redis),
		Env:            normalizeEnv(firstNonEmpty(raw.Env, raw.NodeEnv)),
		AllowedOrigins: normalizeOrigins(append(raw.AllowedOrigins, raw.CORSOrigins...)),
		JWTSecret:      firstNonEmpty(raw.JWTSecret, raw.JWTSecretAlias),
		Ingress:        normalizeIngressConfig(raw.Ingress),
		Bark:           raw.Bark,
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	cfg.DSN = firstNonEmpty(raw.DSN, raw.DatabaseURL, cfg.Database.DSNValue())
	cfg.RedisURL = firstNonEmpty(normalizeRedisRawURL(raw.RedisURL), cfg.Redis.URLValue())

	cfg.RetentionDays = defaultRetentionDays
	if raw.RetentionDays != nil && *raw.RetentionDays > 0 {
		cfg.RetentionDays = *raw.RetentionDays
	}

	return cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env == "development" }
