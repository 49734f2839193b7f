package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2444
	defaultEnv        = "development"

	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "hooklog"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	// PersistenceAsync acknowledges ingress requests before the insert
	// completes; PersistenceSync awaits the insert.
	PersistenceAsync = "async"
	PersistenceSync  = "sync"

	defaultTokenHeader   = "X-Webhook-Token"
	defaultRetentionDays = 7
)
