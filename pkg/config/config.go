package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "JOURNEYLOG"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "JOURNEYLOG_DB_DSN"
	EnvDBHost = "JOURNEYLOG_DB_HOST"
	EnvDBUser = "JOURNEYLOG_DB_USER"
	EnvDBName = "JOURNEYLOG_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Reports      ReportsConfig
	Ingest       IngestConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"JOURNEYLOG_APP_ENV" required:"true"`
	Port         string `envconfig:"JOURNEYLOG_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"JOURNEYLOG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JOURNEYLOG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"JOURNEYLOG_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"JOURNEYLOG_DB_DSN"`
	Driver string `envconfig:"JOURNEYLOG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JOURNEYLOG_DB_HOST"`
	LegacyPort     int    `envconfig:"JOURNEYLOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JOURNEYLOG_DB_USER"`
	LegacyPassword string `envconfig:"JOURNEYLOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"JOURNEYLOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"JOURNEYLOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JOURNEYLOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JOURNEYLOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JOURNEYLOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JOURNEYLOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JOURNEYLOG_REDIS_URL"`
	Address      string        `envconfig:"JOURNEYLOG_REDIS_ADDR"`
	Password     string        `envconfig:"JOURNEYLOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"JOURNEYLOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JOURNEYLOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JOURNEYLOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JOURNEYLOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JOURNEYLOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JOURNEYLOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type ReportsConfig struct {
	PageSize int           `envconfig:"JOURNEYLOG_REPORTS_PAGE_SIZE" default:"10"`
	CacheTTL time.Duration `envconfig:"JOURNEYLOG_REPORTS_CACHE_TTL" default:"1m"`
}

type IngestConfig struct {
	DedupTTL time.Duration `envconfig:"JOURNEYLOG_INGEST_DEDUP_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"JOURNEYLOG_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"JOURNEYLOG_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	JourneyTopic        string `envconfig:"JOURNEYLOG_PUBSUB_JOURNEY_TOPIC" default:"journey-events"`
	JourneySubscription string `envconfig:"JOURNEYLOG_PUBSUB_JOURNEY_SUBSCRIPTION"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"JOURNEYLOG_AUTO_MIGRATE" default:"false"`
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
