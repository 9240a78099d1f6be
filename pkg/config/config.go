package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "repairops"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Billing       BillingConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"REPAIROPS_APP_ENV" required:"true"`
	Port         string `envconfig:"REPAIROPS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REPAIROPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REPAIROPS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REPAIROPS_DB_DSN"`
	Driver string `envconfig:"REPAIROPS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"REPAIROPS_DB_HOST"`
	Port     int    `envconfig:"REPAIROPS_DB_PORT" default:"5432"`
	User     string `envconfig:"REPAIROPS_DB_USER"`
	Password string `envconfig:"REPAIROPS_DB_PASSWORD"`
	Name     string `envconfig:"REPAIROPS_DB_NAME"`
	SSLMode  string `envconfig:"REPAIROPS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REPAIROPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REPAIROPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REPAIROPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REPAIROPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either REPAIROPS_DB_DSN or host/user/name parts are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"REPAIROPS_REDIS_URL"`
	Address      string        `envconfig:"REPAIROPS_REDIS_ADDR"`
	Password     string        `envconfig:"REPAIROPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"REPAIROPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REPAIROPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REPAIROPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REPAIROPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REPAIROPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REPAIROPS_REDIS_WRITE_TIMEOUT" default:"5s"`
	BalanceTTL   time.Duration `envconfig:"REPAIROPS_REDIS_BALANCE_TTL" default:"5m"`
}

// Enabled reports whether a redis endpoint was configured at all; the balance
// cache is optional and the API runs without it.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string        `envconfig:"REPAIROPS_JWT_SECRET" required:"true"`
	Issuer            string        `envconfig:"REPAIROPS_JWT_ISSUER" default:"repairops"`
	ExpirationMinutes int           `envconfig:"REPAIROPS_JWT_EXPIRATION_MINUTES" default:"480"`
	RefreshTTL        time.Duration `envconfig:"REPAIROPS_JWT_REFRESH_TTL" default:"720h"`
}

// RefreshTokenTTL returns how long a refresh session stays valid.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return j.RefreshTTL
}

// Expiration returns the configured access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REPAIROPS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REPAIROPS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REPAIROPS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REPAIROPS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REPAIROPS_ARGON_KEY_LEN" default:"32"`
}

type BillingConfig struct {
	// DefaultTaxRate is the VAT percentage applied when the caller does not
	// supply one (the legacy system defaulted to 20%).
	DefaultTaxRate string `envconfig:"REPAIROPS_DEFAULT_TAX_RATE" default:"20"`
	Currency       string `envconfig:"REPAIROPS_CURRENCY" default:"TRY"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"REPAIROPS_LOGIN_RATE_WINDOW" default:"5m"`
	LoginIPLimit    int           `envconfig:"REPAIROPS_LOGIN_RATE_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"REPAIROPS_LOGIN_RATE_EMAIL_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REPAIROPS_AUTO_MIGRATE" default:"false"`
}
