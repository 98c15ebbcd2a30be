package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/km-arc/go-registry/framework/validation"
)

// Config is the central typed configuration struct.
type Config struct {
	App      AppConfig
	Registry RegistryConfig
}

type AppConfig struct {
	Name            string
	Env             string // local | production | testing
	Debug           bool
	Port            string
	ShutdownTimeout time.Duration
}

// RegistryConfig tunes the component registry.
type RegistryConfig struct {
	SlowComponent  time.Duration // self-time that makes a build "slow"
	SlowTotal      time.Duration // total build time that makes a build "slow"
	FactoryTimeout time.Duration // 0 = factories run without a deadline
}

var rules = validation.Rules{
	"APP_ENV":                     "nullable|in:local,production,testing",
	"APP_DEBUG":                   "nullable|boolean",
	"APP_PORT":                    "nullable|integer|gte:1|lte:65535",
	"SHUTDOWN_TIMEOUT_MS":         "nullable|integer|gte:0",
	"REGISTRY_SLOW_COMPONENT_MS":  "nullable|integer|gte:0",
	"REGISTRY_SLOW_TOTAL_MS":      "nullable|integer|gte:0",
	"REGISTRY_FACTORY_TIMEOUT_MS": "nullable|integer|gte:0",
}

// Load reads .env (if present), validates the environment and populates a
// Config. Call once at bootstrap: cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	data := make(map[string]string, len(rules))
	for key := range rules {
		data[key] = os.Getenv(key)
	}
	if err := validation.Make(data, rules).Err(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &Config{
		App: AppConfig{
			Name:            env("APP_NAME", "GoRegistry"),
			Env:             env("APP_ENV", "local"),
			Debug:           envBool("APP_DEBUG", true),
			Port:            env("APP_PORT", "8000"),
			ShutdownTimeout: envMillis("SHUTDOWN_TIMEOUT_MS", 10*time.Second),
		},
		Registry: RegistryConfig{
			SlowComponent:  envMillis("REGISTRY_SLOW_COMPONENT_MS", 50*time.Millisecond),
			SlowTotal:      envMillis("REGISTRY_SLOW_TOTAL_MS", time.Second),
			FactoryTimeout: envMillis("REGISTRY_FACTORY_TIMEOUT_MS", 0),
		},
	}, nil
}

// Addr returns the listen address for APP_PORT.
func (c *Config) Addr() string { return ":" + c.App.Port }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envMillis(key string, fallback time.Duration) time.Duration {
	ms := GetInt(key, -1)
	if ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
