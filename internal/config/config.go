package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type APIConfig struct {
	Addr        string
	Backend     string
	DatabaseURL string
	SQLitePath  string
	TickMin     time.Duration
	TickMax     time.Duration
	AutoUpdate  bool
	Seed        int64
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("MANDISIM_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:        addr,
		Backend:     envBackendDefault(),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  envDefault("MANDISIM_SQLITE_PATH", "mandisim.db"),
		TickMin:     envDurationDefault("MANDISIM_TICK_MIN", 45*time.Second),
		TickMax:     envDurationDefault("MANDISIM_TICK_MAX", 60*time.Second),
		AutoUpdate:  envBoolDefault("MANDISIM_AUTO_UPDATE", true),
		Seed:        envInt64Default("MANDISIM_MARKET_SEED", 0),
	}
	if cfg.Backend == BackendPostgres && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required when MANDISIM_BACKEND=postgres")
	}
	if cfg.TickMax < cfg.TickMin {
		cfg.TickMax = cfg.TickMin
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("MANDI_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envBackendDefault() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("MANDISIM_BACKEND")))
	switch v {
	case BackendSQLite, BackendPostgres, BackendMemory:
		return v
	default:
		return BackendSQLite
	}
}
