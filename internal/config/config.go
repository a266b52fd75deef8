package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver string

	// MongoURI and MongoName are used by the mongo driver.
	MongoURI  string
	MongoName string

	// PostgresDSN and the pool settings are used by the postgres driver.
	PostgresDSN     string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

// RedisConfig with an empty Addr disables redis: events are applied inline
// and login throttling is off.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	PasswordCost     int
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

type ListingsConfig struct {
	RequireVerifiedOwner bool
	DefaultPageSize      int
	MaxPageSize          int
}

type EventsConfig struct {
	Stream string
}

type WorkerConfig struct {
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type BootstrapConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Database         DatabaseConfig
	Redis            RedisConfig
	Security         SecurityConfig
	Listings         ListingsConfig
	Events           EventsConfig
	Worker           WorkerConfig
	Bootstrap        BootstrapConfig
	AllowCORSOrigins []string
}

// Load reads config.yaml, a .env file and BOMA_* environment variables, in
// increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("BOMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Security.JWTSecret == "" {
		return errors.New("config: security.jwtsecret is required")
	}
	switch c.Database.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverPostgres && c.Database.PostgresDSN == "" {
		return errors.New("config: database.postgresdsn is required for the postgres driver")
	}
	return nil
}

func (c *AppConfig) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.mongouri", "mongodb://127.0.0.1:27017")
	v.SetDefault("database.mongoname", "boma")
	v.SetDefault("database.postgresdsn", "")
	v.SetDefault("database.maxopen", 30)
	v.SetDefault("database.maxidle", 10)
	v.SetDefault("database.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Registered so AutomaticEnv sees BOMA_SECURITY_JWTSECRET during Unmarshal.
	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.tokenttl", "168h") // 7 days
	v.SetDefault("security.passwordcost", 10)
	v.SetDefault("security.loginmaxattempts", 10)
	v.SetDefault("security.loginwindow", "15m")

	v.SetDefault("listings.requireverifiedowner", false)
	v.SetDefault("listings.defaultpagesize", 20)
	v.SetDefault("listings.maxpagesize", 100)

	v.SetDefault("events.stream", "boma:events")

	v.SetDefault("worker.group", "boma-workers")
	v.SetDefault("worker.consumer", "worker-1")
	v.SetDefault("worker.claiminterval", "30s")

	v.SetDefault("bootstrap.adminusername", "")
	v.SetDefault("bootstrap.adminemail", "")
	v.SetDefault("bootstrap.adminpassword", "")

	v.SetDefault("allowcorsorigins", []string{})
}
