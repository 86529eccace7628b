package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvPathVar points at an alternate .env file when no .env sits next
	// to the executable.
	EnvPathVar = "SPELLPASTE"

	defaultHotkey          = "Ctrl+Space"
	defaultSelectionSettle = 100 * time.Millisecond
	defaultFocusSettle     = 50 * time.Millisecond
	defaultFlushInterval   = 200 * time.Millisecond
)

type Config struct {
	Hotkey            string
	CollectionsDir    string
	EnableFileLogging bool
	WatchCollections  bool

	// SelectionSettle is the wait between the synthetic copy gesture and
	// the clipboard re-read. The primary flakiness knob: applications that
	// miss this window read as "nothing selected".
	SelectionSettle time.Duration
	// FocusSettle is the wait between restoring the previous window and
	// sending synthetic input at it.
	FocusSettle time.Duration
	// FlushInterval is the stream batching window.
	FlushInterval time.Duration
}

func Load() (*Config, error) {
	// Configuration sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, SPELLPASTE env var as a path to a config file
	envPath := resolveEnvPath()
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Hotkey:            getEnvWithDefault("HOTKEY", defaultHotkey),
		CollectionsDir:    os.Getenv("COLLECTIONS_DIR"),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		WatchCollections:  strings.ToLower(getEnvWithDefault("WATCH_COLLECTIONS", "true")) == "true",
		SelectionSettle:   envMillis("SELECTION_SETTLE_MS", defaultSelectionSettle),
		FocusSettle:       envMillis("FOCUS_SETTLE_MS", defaultFocusSettle),
		FlushInterval:     envMillis("STREAM_FLUSH_MS", defaultFlushInterval),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envMillis(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return defaultValue
}
