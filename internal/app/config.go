package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/workhivehq/workhive/internal/database"
	"github.com/workhivehq/workhive/pkg/mail"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    database.Config   `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	SMTP        mail.SMTPSettings `mapstructure:"smtp"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address renders the listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// RedisConfig controls the optional Redis-backed cache.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// MaintenanceConfig controls the background cleanup schedule.
type MaintenanceConfig struct {
	Schedule                  string `mapstructure:"schedule"`
	AuditRetentionDays        int    `mapstructure:"audit_retention_days"`
	NotificationRetentionDays int    `mapstructure:"notification_retention_days"`
}

// LoadConfig reads configuration from workhive.yaml (if present) and
// WORKHIVE_* environment variables, applying defaults for everything else.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/workhive.db")

	v.SetDefault("auth.issuer", "workhive")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.timeout", 10*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")

	v.SetDefault("logging.level", "info")

	v.SetDefault("maintenance.schedule", "@every 10m")
	v.SetDefault("maintenance.audit_retention_days", 90)
	v.SetDefault("maintenance.notification_retention_days", 30)

	v.SetEnvPrefix("WORKHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("workhive")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/workhive")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("config: auth.jwt_secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Maintenance.AuditRetentionDays <= 0 {
		return errors.New("config: maintenance.audit_retention_days must be positive")
	}
	if c.Maintenance.NotificationRetentionDays <= 0 {
		return errors.New("config: maintenance.notification_retention_days must be positive")
	}
	return nil
}
