// Package config loads server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the engine server.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig configures the websocket gateway.
type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	LeasePeriod time.Duration `mapstructure:"lease_period"`
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`    // debug, info, warn, error
	Encoding string `mapstructure:"encoding"` // json or console
}

// EngineConfig tunes the per-game event managers.
type EngineConfig struct {
	MaxQueueSize int  `mapstructure:"max_queue_size"`
	LogEvents    bool `mapstructure:"log_events"`
}

// AuthConfig configures gateway authentication. APIKeyHashes holds bcrypt
// hashes of accepted keys; an empty list disables the key check.
type AuthConfig struct {
	APIKeyHashes []string `mapstructure:"api_key_hashes"`
}

// Load reads configuration from the given path. Every key can be overridden
// through the environment with a CARDSMITH_ prefix, e.g.
// CARDSMITH_SERVER_ADDR or CARDSMITH_DATABASE_PASSWORD.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("server.addr", ":8089")
	v.SetDefault("server.lease_period", 5*time.Minute)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cardsmith")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "cardsmith")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")
	v.SetDefault("engine.max_queue_size", 1000)
	v.SetDefault("engine.log_events", false)

	v.SetEnvPrefix("CARDSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus environment cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.LeasePeriod <= 0 {
		return fmt.Errorf("server.lease_period must be positive, got %s", c.Server.LeasePeriod)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("logging.encoding %q is not json or console", c.Logging.Encoding)
	}
	if c.Engine.MaxQueueSize < 0 {
		return fmt.Errorf("engine.max_queue_size must not be negative, got %d", c.Engine.MaxQueueSize)
	}
	return nil
}
