package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lecternhq/lectern/pkg/jwtx"
)

type Config struct {
	SigningSecret    string   // Required: HS256 secret for session tokens (min 32 bytes)
	Issuer           string   // Issuer claim for tokens (default: lectern)
	Audience         []string // Audience claim for tokens (default: lectern-api)
	PinnedRootAdmins []string // User IDs trusted always to be root admins (required in prod)

	DatabaseFile         string        // Path to SQLite database file (default: ./lectern.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	MonitorInterval      time.Duration // Root admin invariant check throttle (default: 30s)
}

// LoadConfig reads configuration from the environment and validates it once.
// A bad configuration stops the process at startup instead of surfacing as
// per-request failures later.
func LoadConfig() (Config, error) {
	var errs []error

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		errs = append(errs, err)
	}
	grace, err := getEnvDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second)
	if err != nil {
		errs = append(errs, err)
	}
	housekeeping, err := getEnvDuration("HOUSEKEEPING_INTERVAL", 1*time.Hour)
	if err != nil {
		errs = append(errs, err)
	}
	monitor, err := getEnvDuration("LECTERN_MONITOR_INTERVAL", 30*time.Second)
	if err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	cfg := Config{
		SigningSecret:        os.Getenv("LECTERN_SIGNING_SECRET"),
		Issuer:               getEnvOrDefault("LECTERN_ISSUER", "lectern"),
		Audience:             splitList(getEnvOrDefault("LECTERN_AUDIENCE", "lectern-api")),
		PinnedRootAdmins:     splitList(os.Getenv("LECTERN_PINNED_ROOT_ADMINS")),
		DatabaseFile:         getEnvOrDefault("LECTERN_DATABASE_FILE", "lectern.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 port,
		ShutdownGracePeriod:  grace,
		HousekeepingInterval: housekeeping,
		MonitorInterval:      monitor,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the startup invariants.
func (c Config) Validate() error {
	var errs []error

	if c.SigningSecret == "" {
		errs = append(errs, errors.New("LECTERN_SIGNING_SECRET is required"))
	} else if len(c.SigningSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("LECTERN_SIGNING_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}

	if len(c.Audience) == 0 {
		errs = append(errs, errors.New("LECTERN_AUDIENCE must name at least one audience"))
	}

	// Without a pinned list the self-healing monitor has nothing to restore
	// from. Tolerable in dev, not in prod.
	if c.Env == "prod" && len(c.PinnedRootAdmins) == 0 {
		errs = append(errs, errors.New("LECTERN_PINNED_ROOT_ADMINS is required in prod"))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}

	return errors.Join(errs...)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer variable. A set-but-malformed value is a
// configuration error, not a silent fall back to the default.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return intValue, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return duration, nil
}
