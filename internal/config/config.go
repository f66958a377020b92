package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SERVIRHC_DATABASE_PATH.
// Fields carry split_words, never envconfig tags: tagged fields are also read
// from the bare, unprefixed name (PATH, USER, PORT).
const EnvPrefix = "SERVIRHC"

type Config struct {
	App       AppConfig       `mapstructure:"app" split_words:"true"`
	Server    ServerConfig    `mapstructure:"server" split_words:"true"`
	Database  DatabaseConfig  `mapstructure:"database" split_words:"true"`
	Session   SessionConfig   `mapstructure:"session" split_words:"true"`
	Auth      AuthConfig      `mapstructure:"auth" split_words:"true"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" split_words:"true"`
	Log       LogConfig       `mapstructure:"log" split_words:"true"`
}

type AppConfig struct {
	Name string `mapstructure:"name" split_words:"true"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host" split_words:"true"`
	Port         int           `mapstructure:"port" split_words:"true"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" split_words:"true"`
	// MaxBodyBytes bounds request bodies, backups included.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" split_words:"true"`
	// AllowedOrigins lists the UI origins allowed to call the API.
	AllowedOrigins []string `mapstructure:"allowed_origins" split_words:"true"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" split_words:"true"`
	Path     string `mapstructure:"path" split_words:"true"`
	Host     string `mapstructure:"host" split_words:"true"`
	Port     int    `mapstructure:"port" split_words:"true"`
	User     string `mapstructure:"user" split_words:"true"`
	Password string `mapstructure:"password" split_words:"true"`
	Name     string `mapstructure:"name" split_words:"true"`
	SSLMode  string `mapstructure:"sslmode" split_words:"true"`
}

type SessionConfig struct {
	Store    string        `mapstructure:"store" split_words:"true"`
	TTL      time.Duration `mapstructure:"ttl" split_words:"true"`
	Secret   string        `mapstructure:"secret" split_words:"true"`
	File     string        `mapstructure:"file" split_words:"true"`
	RedisURL string        `mapstructure:"redis_url" split_words:"true"`
}

type AuthConfig struct {
	Hasher            string `mapstructure:"hasher" split_words:"true"`
	BcryptCost        int    `mapstructure:"bcrypt_cost" split_words:"true"`
	MinPasswordLength int    `mapstructure:"min_password_length" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" split_words:"true"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true"`
	Burst             int     `mapstructure:"burst" split_words:"true"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" split_words:"true"`
	Format string `mapstructure:"format" split_words:"true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ser-vir-hc")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 32<<20)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/servirhc.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.file", "data/session.cache")

	v.SetDefault("auth.hasher", "sha256")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.min_password_length", 6)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 1.0)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig reads an optional .env, then config.yml (from path when given,
// otherwise from . and ./config), then SERVIRHC_* environment overrides.
// A missing config file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the process cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.Name == "" {
			return errors.New("database.name is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch strings.ToLower(c.Session.Store) {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return errors.New("session.redis_url is required for the redis session store")
		}
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}

	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.Auth.MinPasswordLength < 1 {
		return errors.New("auth.min_password_length must be at least 1")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
