package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the app reads.
	EnvPrefix = "polyclinic"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "POLYCLINIC_DB_DSN"
	EnvDBHost = "POLYCLINIC_DB_HOST"
	EnvDBUser = "POLYCLINIC_DB_USER"
	EnvDBName = "POLYCLINIC_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Storage       StorageConfig
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
	Env          string `envconfig:"POLYCLINIC_APP_ENV" required:"true"`
	Port         string `envconfig:"POLYCLINIC_APP_PORT" required:"true"`
	PublicURL    string `envconfig:"POLYCLINIC_PUBLIC_URL" default:"http://localhost:5000"`
	LogLevel     string `envconfig:"POLYCLINIC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POLYCLINIC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"POLYCLINIC_DB_DSN"`
	Driver string `envconfig:"POLYCLINIC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POLYCLINIC_DB_HOST"`
	LegacyPort     int    `envconfig:"POLYCLINIC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POLYCLINIC_DB_USER"`
	LegacyPassword string `envconfig:"POLYCLINIC_DB_PASSWORD"`
	LegacyName     string `envconfig:"POLYCLINIC_DB_NAME"`
	LegacySSLMode  string `envconfig:"POLYCLINIC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POLYCLINIC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POLYCLINIC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POLYCLINIC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POLYCLINIC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POLYCLINIC_REDIS_URL"`
	Address      string        `envconfig:"POLYCLINIC_REDIS_ADDR"`
	Password     string        `envconfig:"POLYCLINIC_REDIS_PASSWORD"`
	DB           int           `envconfig:"POLYCLINIC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POLYCLINIC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POLYCLINIC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POLYCLINIC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POLYCLINIC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POLYCLINIC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret       string `envconfig:"POLYCLINIC_JWT_SECRET" required:"true"`
	Issuer       string `envconfig:"POLYCLINIC_JWT_ISSUER" default:"PolyclinicServer"`
	Audience     string `envconfig:"POLYCLINIC_JWT_AUDIENCE" default:"PolyclinicClient"`
	LifetimeDays int    `envconfig:"POLYCLINIC_JWT_LIFETIME_DAYS" default:"7"`
}

// Lifetime returns the access token lifetime configured in days.
func (j JWTConfig) Lifetime() time.Duration {
	if j.LifetimeDays <= 0 {
		return 0
	}
	return time.Duration(j.LifetimeDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"POLYCLINIC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POLYCLINIC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POLYCLINIC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POLYCLINIC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POLYCLINIC_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow          time.Duration `envconfig:"POLYCLINIC_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginAccountLimit    int           `envconfig:"POLYCLINIC_AUTH_RATE_LIMIT_LOGIN_ACCOUNT_LIMIT" default:"5"`
	LoginIPLimit         int           `envconfig:"POLYCLINIC_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow       time.Duration `envconfig:"POLYCLINIC_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterAccountLimit int           `envconfig:"POLYCLINIC_AUTH_RATE_LIMIT_REGISTER_ACCOUNT_LIMIT" default:"3"`
	RegisterIPLimit      int           `envconfig:"POLYCLINIC_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type StorageConfig struct {
	RootDir     string `envconfig:"POLYCLINIC_STORAGE_ROOT" default:"resources"`
	MaxUploadMB int    `envconfig:"POLYCLINIC_STORAGE_MAX_UPLOAD_MB" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"POLYCLINIC_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"POLYCLINIC_AUTO_MIGRATE" default:"false"`
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
