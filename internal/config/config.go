// Package config loads and validates configuration for both binaries from a
// YAML file with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type PageSpeedConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	MaxRetries        int           `mapstructure:"max_retries" validate:"gte=0"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff" validate:"gt=0"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier" validate:"gte=1"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type CollectorConfig struct {
	Workers int           `mapstructure:"workers" validate:"gte=1"`
	LockTTL time.Duration `mapstructure:"lock_ttl" validate:"gt=0"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NotifyConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key" validate:"required_if=Enabled true"`
	To          string `mapstructure:"to" validate:"required_if=Enabled true,omitempty,email"`
	FromName    string `mapstructure:"from_name"`
	FromAddress string `mapstructure:"from_address" validate:"required_if=Enabled true,omitempty,email"`
}

type Config struct {
	Env         string          `mapstructure:"env"`
	ServiceName string          `mapstructure:"service_name"`
	Port        int             `mapstructure:"port" validate:"gt=0,lte=65535"`
	DatabaseURL string          `mapstructure:"database_url" validate:"required"`
	Redis       RedisConfig     `mapstructure:"redis"`
	PageSpeed   PageSpeedConfig `mapstructure:"pagespeed"`
	Collector   CollectorConfig `mapstructure:"collector"`
	Notify      NotifyConfig    `mapstructure:"notify"`
}

func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("service_name", "cwv-collector")
	v.SetDefault("port", 8080)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("pagespeed.max_retries", 3)
	v.SetDefault("pagespeed.initial_backoff", "1s")
	v.SetDefault("pagespeed.backoff_multiplier", 2.0)
	v.SetDefault("pagespeed.timeout", "60s")

	v.SetDefault("collector.workers", 1)
	v.SetDefault("collector.lock_ttl", "2h")

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.from_name", "CWV Collector")
}

func validateConfig(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return formatValidationErrors(ve)
		}
		return err
	}
	return nil
}

func formatValidationErrors(ve validator.ValidationErrors) error {
	var sb strings.Builder
	sb.WriteString("config validation failed:\n")

	for _, fe := range ve {
		fmt.Fprintf(&sb, "- field '%s' failed on '%s'\n", fe.Namespace(), fe.Tag())
	}
	return errors.New(sb.String())
}
