package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	keyPort              = "port"
	keySQLiteDBPath      = "sqlite_db_path"
	keyAMQPURL           = "amqp_url"
	keyAMQPExchange      = "amqp_exchange"
	keyAMQPQueue         = "amqp_queue"
	keyJWTSecret         = "jwt_secret"
	keyTokenTTL          = "token_ttl"
	keyReconcileInterval = "reconcile_interval"
	keyCacheTTL          = "cache_ttl"
	keyLogLevel          = "log_level"
	keyLogFormat         = "log_format"

	MinJWTSecretLength = 16
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP. An empty URL disables messaging and totals are recomputed inline.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Worker
	ReconcileInterval time.Duration

	// Cache
	CacheTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPort, "8081")
	v.SetDefault(keySQLiteDBPath, "./data/keepmoney.db")
	v.SetDefault(keyAMQPURL, "")
	v.SetDefault(keyAMQPExchange, "keepmoney")
	v.SetDefault(keyAMQPQueue, "balance_recalc")
	v.SetDefault(keyJWTSecret, "")
	v.SetDefault(keyTokenTTL, 24*time.Hour)
	v.SetDefault(keyReconcileInterval, 10*time.Minute)
	v.SetDefault(keyCacheTTL, 30*time.Second)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
}

// Load reads configuration from the environment, falling back to an optional
// config.yaml in the working directory (or the file named by KEEPMONEY_CONFIG).
// Environment variables always win.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path := os.Getenv("KEEPMONEY_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		Port:              v.GetString(keyPort),
		SQLiteDBPath:      v.GetString(keySQLiteDBPath),
		AMQPURL:           v.GetString(keyAMQPURL),
		AMQPExchange:      v.GetString(keyAMQPExchange),
		AMQPQueue:         v.GetString(keyAMQPQueue),
		JWTSecret:         v.GetString(keyJWTSecret),
		TokenTTL:          v.GetDuration(keyTokenTTL),
		ReconcileInterval: v.GetDuration(keyReconcileInterval),
		CacheTTL:          v.GetDuration(keyCacheTTL),
		LogLevel:          v.GetString(keyLogLevel),
		LogFormat:         v.GetString(keyLogFormat),
	}, nil
}

// AMQPEnabled reports whether a broker is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Sprintf("JWT secret must be at least %d characters", MinJWTSecretLength))
	}
	if c.TokenTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if c.ReconcileInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid reconcile interval %v: must be at least 1 second", c.ReconcileInterval))
	} else if c.ReconcileInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid reconcile interval %v: must be at most 24 hours", c.ReconcileInterval))
	}

	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
