package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is empty because every field names its variable explicitly.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BOTIQUE_DB_DSN"
	EnvDBHost = "BOTIQUE_DB_HOST"
	EnvDBUser = "BOTIQUE_DB_USER"
	EnvDBName = "BOTIQUE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Tenants      TenantCacheConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"BOTIQUE_APP_ENV" required:"true"`
	Port         string `envconfig:"BOTIQUE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOTIQUE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOTIQUE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOTIQUE_DB_DSN"`
	Driver string `envconfig:"BOTIQUE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOTIQUE_DB_HOST"`
	LegacyPort     int    `envconfig:"BOTIQUE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOTIQUE_DB_USER"`
	LegacyPassword string `envconfig:"BOTIQUE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOTIQUE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOTIQUE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOTIQUE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOTIQUE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOTIQUE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOTIQUE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOTIQUE_REDIS_URL"`
	Address      string        `envconfig:"BOTIQUE_REDIS_ADDR"`
	Password     string        `envconfig:"BOTIQUE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOTIQUE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOTIQUE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOTIQUE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOTIQUE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOTIQUE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOTIQUE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The tenant
// cache degrades to direct DB lookups when it is not.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type TenantCacheConfig struct {
	ResolveTTL time.Duration `envconfig:"BOTIQUE_TENANT_RESOLVE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	EnsureSchema bool `envconfig:"BOTIQUE_ENSURE_SCHEMA" default:"true"`
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
