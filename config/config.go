package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort    int           `mapstructure:"http_port"`
	GRPCPort    int           `mapstructure:"grpc_port"`
	LogLevel    string        `mapstructure:"log_level"`
	ServiceName string        `mapstructure:"service_name"` // Used for Consul registration
	JwtSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`

	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Consul      ConsulConfig      `mapstructure:"consul"`
	Permissions PermissionsConfig `mapstructure:"permissions"`
	Seed        SeedConfig        `mapstructure:"seed"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // "mysql" or "sqlite"
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"` // silent, error, warn, info
}

// CacheConfig selects where per-user permission objects are cached.
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "redis"
	TTL  time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ConsulConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Address     string `mapstructure:"address"`
	ServiceHost string `mapstructure:"service_host"` // Address Consul uses to reach this instance
}

// PermissionsConfig controls how unknown permission names are handled
// when a role is saved. Strict mode rejects the save; otherwise the name
// is dropped and logged.
type PermissionsConfig struct {
	Strict bool `mapstructure:"strict"`
}

type SeedConfig struct {
	AdminPassword string `mapstructure:"admin_password"`
}

const defaultJwtSecret = "default-very-insecure-secret-key"

// Load reads config.yaml from the working directory or ./config and
// applies ERPACCESS_* environment overrides.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 8080)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "erp-access")
	v.SetDefault("jwt_secret", defaultJwtSecret) // CHANGE THIS IN PRODUCTION
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "erp-access.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 15*time.Minute)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("consul.enabled", false)
	v.SetDefault("consul.address", "127.0.0.1:8500")
	v.SetDefault("consul.service_host", "127.0.0.1")
	v.SetDefault("permissions.strict", true)
	v.SetDefault("seed.admin_password", "adminpassword")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("ERPACCESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InsecureSecret reports whether the JWT secret was left at its default.
func (c *Config) InsecureSecret() bool {
	return c.JwtSecret == defaultJwtSecret
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache type %q", c.Cache.Type)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.JwtSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	return nil
}
