// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	TelegramToken   string `mapstructure:"TELEGRAM_TOKEN"`
	ChannelID       int64  `mapstructure:"CHANNEL_ID"`
	ChannelUsername string `mapstructure:"CHANNEL_USERNAME"`
	BotUsername     string `mapstructure:"BOT_USERNAME"`

	OpsPort string `mapstructure:"OPS_PORT"`
	Env     string `mapstructure:"APP_ENV"`

	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	RedisURL                 string `mapstructure:"REDIS_URL"`

	PinThreshold        int64 `mapstructure:"PIN_THRESHOLD"`
	EventTimeoutSeconds int   `mapstructure:"EVENT_TIMEOUT_SECONDS"`
	CommentRowCap       int   `mapstructure:"COMMENT_ROW_CAP"`
	ViewStateTTLHours   int   `mapstructure:"VIEW_STATE_TTL_HOURS"`
	SessionTTLMinutes   int   `mapstructure:"SESSION_TTL_MINUTES"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env != "" && env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("TELEGRAM_TOKEN", "")
	viper.SetDefault("CHANNEL_ID", 0)
	viper.SetDefault("CHANNEL_USERNAME", "")
	viper.SetDefault("BOT_USERNAME", "")
	viper.SetDefault("OPS_PORT", "8376")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "channelpost")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("PIN_THRESHOLD", 100)
	viper.SetDefault("EVENT_TIMEOUT_SECONDS", 10)
	viper.SetDefault("COMMENT_ROW_CAP", 12)
	viper.SetDefault("VIEW_STATE_TTL_HOURS", 168)
	viper.SetDefault("SESSION_TTL_MINUTES", 15)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.OpsPort == "" {
		return errors.New("OPS_PORT is required")
	}
	if c.PinThreshold <= 0 {
		return errors.New("PIN_THRESHOLD must be positive")
	}
	if c.EventTimeoutSeconds <= 0 {
		return errors.New("EVENT_TIMEOUT_SECONDS must be positive")
	}
	if c.CommentRowCap < 1 {
		return errors.New("COMMENT_ROW_CAP must be at least 1")
	}

	if c.IsProduction() {
		if c.TelegramToken == "" {
			return errors.New("TELEGRAM_TOKEN is required in production")
		}
		if c.ChannelID == 0 {
			return errors.New("CHANNEL_ID is required in production")
		}
		if c.BotUsername == "" {
			return errors.New("BOT_USERNAME is required in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	} else if c.TelegramToken == "" {
		log.Println("WARNING: TELEGRAM_TOKEN is empty; the bot loop will not start.")
	}

	return nil
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// EventTimeout is the per-event deadline applied by the update loop.
func (c *Config) EventTimeout() time.Duration {
	return time.Duration(c.EventTimeoutSeconds) * time.Second
}

// ViewStateTTL is how long a post's rendered view state is retained.
func (c *Config) ViewStateTTL() time.Duration {
	return time.Duration(c.ViewStateTTLHours) * time.Hour
}

// SessionTTL bounds pending comment and delete-menu sessions.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
