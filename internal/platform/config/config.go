// Package config loads server settings from the environment, optionally
// overlaid by a TOML file named in CAREHUB_CONFIG.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"carehub/pkg/validation"
)

// Environments recognised by the server.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `validate:"required"`
	Environment       string        `validate:"oneof=development production test"`
	DatabaseURL       string        `validate:"omitempty,url"`
	MaxBodyBytes      int64         `validate:"gt=0"`
	ShutdownTimeout   time.Duration `validate:"gt=0"`
	ValidateResponses bool
	AutoMigrate       bool
	LogLevel          slog.Level
}

// Default returns the development defaults.
func Default() Server {
	return Server{
		Addr:              ":8080",
		Environment:       EnvDevelopment,
		MaxBodyBytes:      1 << 20,
		ShutdownTimeout:   15 * time.Second,
		ValidateResponses: true,
		AutoMigrate:       true,
		LogLevel:          slog.LevelInfo,
	}
}

// IsProduction reports whether the server runs in production.
func (s Server) IsProduction() bool { return s.Environment == EnvProduction }

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Server, error) {
	cfg := Default()

	if path := getenv("CAREHUB_CONFIG"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Server{}, err
		}
	}

	if v := getenv("CAREHUB_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("CAREHUB_ENV"); v != "" {
		cfg.Environment = strings.ToLower(v)
		// Response verification costs a re-parse per request; production
		// opts in explicitly.
		if cfg.IsProduction() {
			cfg.ValidateResponses = false
			cfg.AutoMigrate = false
		}
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getenv("CAREHUB_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Server{}, fmt.Errorf("CAREHUB_MAX_BODY_BYTES: %w", err)
		}
		cfg.MaxBodyBytes = n
	}
	if v := getenv("CAREHUB_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Server{}, fmt.Errorf("CAREHUB_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v := getenv("CAREHUB_VALIDATE_RESPONSES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Server{}, fmt.Errorf("CAREHUB_VALIDATE_RESPONSES: %w", err)
		}
		cfg.ValidateResponses = b
	}
	if v := getenv("CAREHUB_AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Server{}, fmt.Errorf("CAREHUB_AUTO_MIGRATE: %w", err)
		}
		cfg.AutoMigrate = b
	}
	if v := getenv("CAREHUB_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Server{}, fmt.Errorf("CAREHUB_LOG_LEVEL: %w", err)
		}
	}

	if err := validation.Validate(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// fileConfig maps carehub.toml keys onto Server.
type fileConfig struct {
	Addr              string `toml:"addr"`
	Environment       string `toml:"environment"`
	DatabaseURL       string `toml:"database_url"`
	MaxBodyBytes      int64  `toml:"max_body_bytes"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
	ValidateResponses bool   `toml:"validate_responses"`
	AutoMigrate       bool   `toml:"auto_migrate"`
	LogLevel          string `toml:"log_level"`
}

// overlayFile applies only the keys present in the file, so an absent key
// keeps its default rather than the zero value.
func overlayFile(cfg *Server, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load carehub config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load carehub config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("environment") {
		cfg.Environment = strings.ToLower(strings.TrimSpace(raw.Environment))
		if cfg.IsProduction() {
			cfg.ValidateResponses = false
			cfg.AutoMigrate = false
		}
	}
	if meta.IsDefined("database_url") {
		cfg.DatabaseURL = strings.TrimSpace(raw.DatabaseURL)
	}
	if meta.IsDefined("max_body_bytes") {
		cfg.MaxBodyBytes = raw.MaxBodyBytes
	}
	if meta.IsDefined("shutdown_timeout") {
		d, err := time.ParseDuration(raw.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("load carehub config: shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if meta.IsDefined("validate_responses") {
		cfg.ValidateResponses = raw.ValidateResponses
	}
	if meta.IsDefined("auto_migrate") {
		cfg.AutoMigrate = raw.AutoMigrate
	}
	if meta.IsDefined("log_level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw.LogLevel)); err != nil {
			return fmt.Errorf("load carehub config: log_level: %w", err)
		}
	}
	return nil
}
