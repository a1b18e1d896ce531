package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			CORSOrigins:     "*",
			Environment:     "development",
			ShutdownTimeout: 10 * time.Second,
			RateLimitMax:    100,
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			Password:     "",
			Name:         "vtour_db",
			SSLMode:      "disable",
			Path:         "vtour.db",
			MaxOpenConns: 50,
			MaxIdleConns: 25,
		},
		JWT: JWTConfig{
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
		},
		Upload: UploadConfig{
			Dir:          "uploads",
			MaxFileSize:  10 << 20,
			AllowedTypes: []string{"jpeg", "jpg", "png", "webp"},
			PublicPath:   "/api/uploads",
		},
		Admin: AdminConfig{
			Name: "Administrator",
		},
		Logging: LoggingConfig{
			Level:         "info",
			RetentionDays: 30,
			DBSink:        true,
		},
		Sentry: SentryConfig{
			TracesSampleRate: 0.2,
		},
	}
}

// Load layers defaults, an optional YAML file and environment variables,
// in that order, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"upload.allowed_types",
}

// processSliceFields turns comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				parts = append(parts, strings.TrimPrefix(p, "."))
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"port":             "server.port",
	"cors_origins":     "server.cors_origins",
	"app_env":          "server.environment",
	"shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_max":   "server.rate_limit_max",

	"db_driver":         "database.driver",
	"db_host":           "database.host",
	"db_port":           "database.port",
	"db_user":           "database.user",
	"db_password":       "database.password",
	"db_name":           "database.name",
	"db_sslmode":        "database.sslmode",
	"db_path":           "database.path",
	"db_max_open_conns": "database.max_open_conns",
	"db_max_idle_conns": "database.max_idle_conns",

	"jwt_secret":         "jwt.secret",
	"jwt_access_expiry":  "jwt.access_expiry",
	"jwt_refresh_expiry": "jwt.refresh_expiry",

	"upload_dir":           "upload.dir",
	"upload_max_file_size": "upload.max_file_size",
	"upload_allowed_types": "upload.allowed_types",
	"upload_public_path":   "upload.public_path",

	"admin_email":    "admin.email",
	"admin_password": "admin.password",
	"admin_name":     "admin.name",

	"log_level":          "logging.level",
	"log_retention_days": "logging.retention_days",
	"log_db_sink":        "logging.db_sink",

	"sentry_dsn":                "sentry.dsn",
	"sentry_traces_sample_rate": "sentry.traces_sample_rate",
}

// envTransformFunc maps known environment variables onto config keys.
// Unknown variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
