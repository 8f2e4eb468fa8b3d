// Package config handles the XDG configuration directory and environment settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const (
	// AppName is the application directory name.
	AppName = "taskflow"

	// DBFile is the default sqlite database filename.
	DBFile = "taskflow.db"

	// LogFile is the log filename used outside the local environment.
	LogFile = "taskflow.log"

	// EnvFile is the dotenv filename looked up in the config and working directories.
	EnvFile = ".env"
)

// Environments
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Environment variable names
const (
	VarEnv         = "TASKFLOW_ENV"
	VarBackend     = "TASKFLOW_BACKEND"
	VarDBPath      = "TASKFLOW_DB_PATH"
	VarRedisAddr   = "TASKFLOW_REDIS_ADDR"
	VarRedisPrefix = "TASKFLOW_REDIS_PREFIX"
	VarLoginDelay  = "TASKFLOW_LOGIN_DELAY"
	VarLocale      = "TASKFLOW_LOCALE"
	VarStrictWeek  = "TASKFLOW_STRICT_WEEK"
)

// DefaultRedisAddr is used when the redis backend is selected without an address
const DefaultRedisAddr = "localhost:6379"

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Env selects logging verbosity: local, dev or prod.
	Env string

	// Backend is the storage backend name: sqlite, redis or memory.
	Backend string

	DBPath      string
	RedisAddr   string
	RedisPrefix string

	// LoginDelay is waited before every login and registration.
	LoginDelay time.Duration

	// Locale drives alphabetical sorting.
	Locale language.Tag

	// StrictWeek excludes past due dates from the week filter.
	StrictWeek bool
}

// Load builds a Config for configDir from the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/taskflow or $HOME/.config/taskflow.
// Dotenv files never override variables already set.
func Load(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	for _, path := range []string{filepath.Join(dir, EnvFile), EnvFile} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	cfg := &Config{
		Dir:         dir,
		Env:         strings.ToLower(getenv(VarEnv, EnvProd)),
		Backend:     strings.ToLower(getenv(VarBackend, "sqlite")),
		DBPath:      getenv(VarDBPath, filepath.Join(dir, DBFile)),
		RedisAddr:   getenv(VarRedisAddr, DefaultRedisAddr),
		RedisPrefix: os.Getenv(VarRedisPrefix),
		Locale:      language.Und,
	}

	if v := os.Getenv(VarLoginDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid %s %q: want a non-negative duration like 500ms", VarLoginDelay, v)
		}
		cfg.LoginDelay = d
	}

	if v := os.Getenv(VarLocale); v != "" {
		tag, err := language.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", VarLocale, v, err)
		}
		cfg.Locale = tag
	}

	if v := os.Getenv(VarStrictWeek); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", VarStrictWeek, v, err)
		}
		cfg.StrictWeek = strict
	}

	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// LogPath returns the path to the log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
