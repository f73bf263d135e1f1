// Package config loads runtime settings for the blog API server and its
// terminal client.
//
// Sources are applied in order, each overriding the previous one:
//
//  1. built-in defaults (LoadDefaults)
//  2. an optional YAML file (-config flag or CONFIG_FILE)
//  3. a .env file, loaded into the process environment without replacing
//     variables that are already set
//  4. environment variables
//  5. command-line flags
//
// The result is checked once by Validate before anything is started.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the shortest JWT secret the server accepts.
const MinSecretLength = 16

// Config holds runtime settings for the server.
//
// Fields:
//   - Port: TCP port the HTTP server listens on.
//   - DatabaseDSN: SQLite file path, or ":memory:".
//   - JWTSecret: HMAC secret for signing tokens (HS256). No default; must be set.
//   - TokenTTL: lifetime of issued tokens.
//   - AllowedOrigins: CORS origins allowed to call the API from a browser.
//   - AuthRateLimit: requests per minute per IP on /api/auth/*; 0 disables.
//   - BcryptCost: work factor for password hashes.
//   - LogLevel: debug, info, warn or error.
//   - TrustProxy: take the client IP from X-Forwarded-For / X-Real-IP. Only
//     set it behind a reverse proxy that overwrites those headers.
type Config struct {
	Port           int           `yaml:"port"`
	DatabaseDSN    string        `yaml:"database_dsn"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	AuthRateLimit  int           `yaml:"auth_rate_limit"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
	LogLevel       string        `yaml:"log_level"`
	TrustProxy     bool          `yaml:"trust_proxy"`
}

// LoadDefaults populates c with development defaults. JWTSecret has no
// default, so Validate fails until one is configured.
func (c *Config) LoadDefaults() {
	c.Port = 5000
	c.DatabaseDSN = "data/blog.db"
	c.TokenTTL = time.Hour
	c.AllowedOrigins = []string{"http://localhost:3000"}
	c.AuthRateLimit = 10
	c.BcryptCost = 10
	c.LogLevel = "info"
}

// Load builds a Config from all sources. args are the command-line
// arguments without the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	flags, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	configFile := flags.configFile
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	if configFile != "" {
		if err := loadYAML(cfg, configFile); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(flags.envFile); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT secret must be at least %d characters", MinSecretLength))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1-65535", c.Port))
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		errs = append(errs, errors.New("database DSN must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token TTL must be positive, got %s", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range %d-%d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.AuthRateLimit < 0 {
		errs = append(errs, fmt.Errorf("auth rate limit must not be negative, got %d", c.AuthRateLimit))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
