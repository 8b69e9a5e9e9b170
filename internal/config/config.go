package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	HTTPAddr    string

	Store       string
	DatabaseDSN string

	ConsumeMaxAttempts int
	ConsumeBackoff     time.Duration

	DefaultMarginPercent decimal.Decimal
	ShutdownTimeout      time.Duration
}

// Load reads the process environment. Malformed numbers and durations are
// reported together rather than silently falling back to defaults.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	var errs []error
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		ServiceName: env("SERVICE_NAME", "kitchen-inventory"),
		Env:         env("ENV", "dev"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		Store:       strings.ToLower(env("STORE", StoreMemory)),
		DatabaseDSN: env("DATABASE_DSN", ""),
	}

	attempts, err := strconv.Atoi(env("CONSUME_MAX_ATTEMPTS", "3"))
	if err != nil {
		errs = append(errs, fmt.Errorf("config: CONSUME_MAX_ATTEMPTS: %w", err))
	}
	cfg.ConsumeMaxAttempts = attempts

	if cfg.ConsumeBackoff, err = time.ParseDuration(env("CONSUME_BACKOFF", "50ms")); err != nil {
		errs = append(errs, fmt.Errorf("config: CONSUME_BACKOFF: %w", err))
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(env("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		errs = append(errs, fmt.Errorf("config: SHUTDOWN_TIMEOUT: %w", err))
	}
	if cfg.DefaultMarginPercent, err = decimal.NewFromString(env("DEFAULT_MARGIN_PERCENT", "200")); err != nil {
		errs = append(errs, fmt.Errorf("config: DEFAULT_MARGIN_PERCENT: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("config: DATABASE_DSN is required when STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE %q", c.Store))
	}
	if c.ConsumeMaxAttempts < 1 {
		errs = append(errs, errors.New("config: CONSUME_MAX_ATTEMPTS must be at least 1"))
	}
	if c.ConsumeBackoff < 0 {
		errs = append(errs, errors.New("config: CONSUME_BACKOFF must not be negative"))
	}
	if c.DefaultMarginPercent.IsNegative() {
		errs = append(errs, errors.New("config: DEFAULT_MARGIN_PERCENT must not be negative"))
	}
	return errors.Join(errs...)
}
