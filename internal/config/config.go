package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Simplici0/facecost/internal/db"
	"github.com/Simplici0/facecost/internal/factors"
)

const (
	defaultDBPath    = "./facecost.db"
	defaultPort      = "8080"
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultEnv       = "development"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv          string
	DBDriver        string
	DBPath          string
	DatabaseURL     string
	Port            string
	AdminToken      string
	LogLevel        string
	LogFormat       string
	FactorCacheTTL  time.Duration
	FactorCacheSize int
	PersistResults  bool
	SeedFactors     bool
	CompareWorkers  int

	// Warnings lists non-fatal configuration problems for the caller to log
	// once a logger exists.
	Warnings []string
}

// DSN is the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == db.DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// Load reads ./.env when present, then the environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. Variables already set in the
// environment win over the file.
func LoadFrom(path string) (Config, error) {
	// Best-effort: production should use real env injection.
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	cfg := Config{
		AppEnv:      getenv("APP_ENV", defaultEnv),
		DBDriver:    strings.ToLower(getenv("DB_DRIVER", db.DriverSQLite)),
		DBPath:      getenv("DB_PATH", defaultDBPath),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        getenv("PORT", defaultPort),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
		LogLevel:    getenv("LOG_LEVEL", defaultLogLevel),
		LogFormat:   getenv("LOG_FORMAT", defaultLogFormat),
	}

	var err error
	if cfg.FactorCacheTTL, err = durationEnv("FACTOR_CACHE_TTL", factors.DefaultCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.FactorCacheSize, err = intEnv("FACTOR_CACHE_SIZE", factors.DefaultCacheSize); err != nil {
		return Config{}, err
	}
	if cfg.CompareWorkers, err = intEnv("COMPARE_WORKERS", runtime.GOMAXPROCS(0)); err != nil {
		return Config{}, err
	}
	if cfg.PersistResults, err = boolEnv("PERSIST_RESULTS", true); err != nil {
		return Config{}, err
	}
	if cfg.SeedFactors, err = boolEnv("SEED_FACTORS", true); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case db.DriverSQLite:
	case db.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}

	if cfg.CompareWorkers < 1 {
		cfg.Warnings = append(cfg.Warnings, "COMPARE_WORKERS below 1, using 1")
		cfg.CompareWorkers = 1
	}
	if cfg.AdminToken == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_TOKEN is not set, factor admin routes are disabled")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// durationEnv accepts Go durations ("90s", "5m") or a plain number of seconds.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
