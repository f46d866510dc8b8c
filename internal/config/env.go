// Package config provides centralized configuration management.
// All OUTREACH_* environment lookups live here instead of being
// scattered across the flows.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Env holds all outreach environment variables.
type Env struct {
	// BaseURL is the target site base URL (OUTREACH_BASE_URL)
	BaseURL string

	// Headless toggles headless browser launch (OUTREACH_HEADLESS, default on)
	Headless bool

	// SlowMo is the per-action browser delay (OUTREACH_SLOWMO_MS)
	SlowMo time.Duration

	// TypeDelay is the per-character typing delay during login
	// (OUTREACH_TYPE_DELAY_MS)
	TypeDelay time.Duration

	// StateDir is the local session-state directory (OUTREACH_STATE_DIR)
	StateDir string

	// StateBucket is the optional GCS bucket mirroring session state
	// (OUTREACH_STATE_BUCKET)
	StateBucket string

	// StatePrefix is the object prefix inside StateBucket (OUTREACH_STATE_PREFIX)
	StatePrefix string

	// DBPath is the sqlite attempt-history path (OUTREACH_DB_PATH)
	DBPath string

	// Port is the HTTP listen port (OUTREACH_PORT)
	Port int
}

var (
	env     *Env
	envOnce sync.Once
)

// Get returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Get() *Env {
	envOnce.Do(func() {
		env = &Env{
			BaseURL:     getEnvDefault("OUTREACH_BASE_URL", "https://www.linkedin.com"),
			Headless:    os.Getenv("OUTREACH_HEADLESS") != "0",
			SlowMo:      envMillis("OUTREACH_SLOWMO_MS", 0),
			TypeDelay:   envMillis("OUTREACH_TYPE_DELAY_MS", 60),
			StateDir:    getEnvDefault("OUTREACH_STATE_DIR", Path("state")),
			StateBucket: os.Getenv("OUTREACH_STATE_BUCKET"),
			StatePrefix: getEnvDefault("OUTREACH_STATE_PREFIX", "outreach-state"),
			DBPath:      getEnvDefault("OUTREACH_DB_PATH", Path("outreach.db")),
			Port:        envInt("OUTREACH_PORT", 8090),
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

// Paths holds standard outreach directory paths.
type Paths struct {
	// Home is the outreach home directory (~/.openoutreach)
	Home string

	// State is the session-state directory (~/.openoutreach/state)
	State string

	// EnvFile is the .env file path (~/.openoutreach/.env)
	EnvFile string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		outHome := filepath.Join(home, ".openoutreach")

		paths = &Paths{
			Home:    outHome,
			State:   filepath.Join(outHome, "state"),
			EnvFile: filepath.Join(outHome, ".env"),
		}
	})
	return paths
}

// Path returns a path under the outreach home directory.
func Path(parts ...string) string {
	p := GetPaths()
	allParts := append([]string{p.Home}, parts...)
	return filepath.Join(allParts...)
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
