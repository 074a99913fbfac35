package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/solarinvoice/invoicer/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Auth       AuthConfig       `validate:"required"`
	Invoice    InvoiceConfig    `validate:"required"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" validate:"required"`
	Cache      CacheConfig      `validate:"required"`
	Sentry     SentryConfig     `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `validate:"required"`
	Port                   int    `validate:"required"`
	User                   string `validate:"required"`
	Password               string
	DBName                 string        `mapstructure:"dbname" validate:"required"`
	SSLMode                string        `mapstructure:"sslmode" validate:"required"`
	MaxOpenConns           int           `mapstructure:"max_open_conns"`
	MaxIdleConns           int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int           `mapstructure:"conn_max_lifetime_minutes"`
	AutoMigrate            bool          `mapstructure:"auto_migrate"`
	SlowQueryThreshold     time.Duration `mapstructure:"slow_query_threshold"`
}

// AuthConfig holds the shared secret used to verify bearer tokens issued by the
// upstream identity service
type AuthConfig struct {
	Secret string `validate:"required"`
}

type InvoiceConfig struct {
	NumberPrefix        string  `mapstructure:"number_prefix" validate:"required,max=10"`
	NumberLength        int     `mapstructure:"number_length" validate:"required,min=1,max=18"`
	DefaultSSTRate      float64 `mapstructure:"default_sst_rate" validate:"min=0,max=100"`
	ShareLinkExpiryDays int     `mapstructure:"share_link_expiry_days" validate:"required,min=1"`
	PublicBaseURL       string  `mapstructure:"public_base_url"`
}

type RateLimitConfig struct {
	PublicViewPerMinute int `mapstructure:"public_view_per_minute" validate:"required,min=1"`
	Burst               int `mapstructure:"burst" validate:"required,min=1"`
}

// CacheConfig controls the in-process cache of catalog lookups
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env is fine, the process environment wins anyway
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/invoicer")

	v.SetEnvPrefix("INVOICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("postgres.slow_query_threshold", 200*time.Millisecond)
	v.SetDefault("invoice.number_prefix", "INV")
	v.SetDefault("invoice.number_length", 6)
	v.SetDefault("invoice.default_sst_rate", 8)
	v.SetDefault("invoice.share_link_expiry_days", 7)
	v.SetDefault("rate_limit.public_view_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("sentry.sample_rate", 1.0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Invoice: InvoiceConfig{
			NumberPrefix:        "INV",
			NumberLength:        6,
			DefaultSSTRate:      8,
			ShareLinkExpiryDays: 7,
		},
		RateLimit: RateLimitConfig{
			PublicViewPerMinute: 60,
			Burst:               10,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
