package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	JWT      JWTConfig      `koanf:"jwt"`
	Upload   UploadConfig   `koanf:"upload"`
	Admin    AdminConfig    `koanf:"admin"`
	Logging  LoggingConfig  `koanf:"logging"`
	Sentry   SentryConfig   `koanf:"sentry"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	CORSOrigins     string        `koanf:"cors_origins"`
	Environment     string        `koanf:"environment"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimitMax    int           `koanf:"rate_limit_max"`
}

type DatabaseConfig struct {
	Driver       string `koanf:"driver"` // postgres or sqlite
	Host         string `koanf:"host"`
	Port         string `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	Name         string `koanf:"name"`
	SSLMode      string `koanf:"sslmode"`
	Path         string `koanf:"path"` // sqlite only
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
}

type JWTConfig struct {
	Secret        string        `koanf:"secret"`
	AccessExpiry  time.Duration `koanf:"access_expiry"`
	RefreshExpiry time.Duration `koanf:"refresh_expiry"`
}

type UploadConfig struct {
	Dir          string   `koanf:"dir"`
	MaxFileSize  int64    `koanf:"max_file_size"`
	AllowedTypes []string `koanf:"allowed_types"`
	PublicPath   string   `koanf:"public_path"`
}

// AdminConfig seeds the initial administrator on startup when Email and
// Password are both set.
type AdminConfig struct {
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
}

type LoggingConfig struct {
	Level         string `koanf:"level"`
	RetentionDays int    `koanf:"retention_days"`
	DBSink        bool   `koanf:"db_sink"`
}

type SentryConfig struct {
	DSN              string  `koanf:"dsn"`
	TracesSampleRate float64 `koanf:"traces_sample_rate"`
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// AllowsType reports whether the given lowercase extension (without dot) may
// be uploaded.
func (c UploadConfig) AllowsType(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, t := range c.AllowedTypes {
		if t == ext {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for postgres")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.JWT.AccessExpiry <= 0 || c.JWT.RefreshExpiry <= 0 {
		return fmt.Errorf("JWT expiries must be positive")
	}

	if c.Upload.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("UPLOAD_ALLOWED_TYPES must list at least one extension")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("LOG_RETENTION_DAYS must not be negative")
	}

	if c.Admin.Email != "" && len(c.Admin.Password) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}
