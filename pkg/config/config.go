package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TINDERA"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv  = "TINDERA_APP_ENV"
	EnvDBDSN   = "TINDERA_DB_DSN"
	EnvDBHost  = "TINDERA_DB_HOST"
	EnvDBUser  = "TINDERA_DB_USER"
	EnvDBName  = "TINDERA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Wallet       WalletConfig
	OCR          OCRConfig
	VerifyLimit  VerifyRateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TINDERA_APP_ENV" required:"true"`
	Port         string `envconfig:"TINDERA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TINDERA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TINDERA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TINDERA_DB_DSN"`
	Driver string `envconfig:"TINDERA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TINDERA_DB_HOST"`
	LegacyPort     int    `envconfig:"TINDERA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TINDERA_DB_USER"`
	LegacyPassword string `envconfig:"TINDERA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TINDERA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TINDERA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TINDERA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TINDERA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TINDERA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TINDERA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TINDERA_REDIS_URL"`
	Address      string        `envconfig:"TINDERA_REDIS_ADDR"`
	Password     string        `envconfig:"TINDERA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TINDERA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TINDERA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TINDERA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TINDERA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TINDERA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TINDERA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// WalletConfig tunes wallet-transfer receipt acceptance.
type WalletConfig struct {
	ProviderKeywords []string      `envconfig:"TINDERA_WALLET_PROVIDER_KEYWORDS" default:"gcash"`
	FreshnessWindow  time.Duration `envconfig:"TINDERA_WALLET_FRESHNESS_WINDOW" default:"10m"`
	MaxImageBytes    int64         `envconfig:"TINDERA_WALLET_MAX_IMAGE_BYTES" default:"10485760"`
	AllowedMimeTypes []string      `envconfig:"TINDERA_WALLET_ALLOWED_MIME_TYPES" default:"image/jpeg,image/jpg,image/png,image/webp"`
}

type OCRConfig struct {
	BaseURL string        `envconfig:"TINDERA_OCR_BASE_URL"`
	APIKey  string        `envconfig:"TINDERA_OCR_API_KEY"`
	Timeout time.Duration `envconfig:"TINDERA_OCR_TIMEOUT" default:"30s"`
}

type VerifyRateLimitConfig struct {
	Window  time.Duration `envconfig:"TINDERA_VERIFY_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"TINDERA_VERIFY_RATE_LIMIT_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TINDERA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TINDERA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TINDERA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TINDERA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"TINDERA_PUBSUB_DOMAIN_TOPIC" default:"tindera-domain-events"`
	DomainSubscription string `envconfig:"TINDERA_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TINDERA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TINDERA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TINDERA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
