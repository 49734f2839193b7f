package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	DSN            string                `yaml:"dsn"` // MySQL DSN
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Env            string                `yaml:"env"` // "development" | "production"
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	Ingress        IngressConfig         `yaml:"ingress"`
	RetentionDays  int                   `yaml:"retention_days"`
	Bark           BarkConfig            `yaml:"bark"`
}

// IngressConfig controls the webhook ingress endpoint behavior.
type IngressConfig struct {
	// Persistence is "async" (fire-and-forget insert, default) or "sync"
	// (insert awaited, failures surfaced as 500). The choice is fixed per
	// deployment.
	Persistence string `yaml:"persistence"`
	// AllowAnonymous records token-less requests with no owner instead of
	// rejecting them with 401.
	AllowAnonymous bool `yaml:"allow_anonymous"`
	// TokenHeader is the header carrying the bearer credential.
	TokenHeader string `yaml:"token_header"`
}

// BarkConfig configures operator push alerts.
type BarkConfig struct {
	Enable    bool   `yaml:"enable"`
	Key       string `yaml:"key"`
	ServerURL string `yaml:"server_url"`
	Title     string `yaml:"title"`
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	DBName    string            `yaml:"db_name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
	Scheme   string `yaml:"scheme"`
}

// rawAppConfig accepts current keys plus legacy aliases; Load folds it into
// AppConfig.
type rawAppConfig struct {
	Port           int                   `yaml:"port"`
	DSN            string                `yaml:"dsn"`
	DatabaseURL    string                `yaml:"database_url"`
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Env            string                `yaml:"env"`
	NodeEnv        string                `yaml:"node_env"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	CORSOrigins    []string              `yaml:"cors_allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	JWTSecretAlias string                `yaml:"jwtsecret"`
	Ingress        rawIngressConfig      `yaml:"ingress"`
	RetentionDays  *int                  `yaml:"retention_days"`
	Bark           BarkConfig            `yaml:"bark"`
}

type rawIngressConfig struct {
	Persistence    string `yaml:"persistence"`
	Mode           string `yaml:"mode"` // legacy alias of persistence
	AllowAnonymous *bool  `yaml:"allow_anonymous"`
	TokenHeader    string `yaml:"token_header"`
}
