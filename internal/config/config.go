// Package config loads runtime settings from the environment, optionally
// overlaid with values from SSM Parameter Store.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultStorageKey       = "messages"
	defaultThinkingDelay    = 100 * time.Millisecond
	defaultMaxMessageLength = 4000
)

// Config holds settings shared by both shells. Values are read once at
// start-up.
type Config struct {
	StorageKey       string
	ThinkingDelay    time.Duration
	MaxMessageLength int

	// DBPath is the SQLite file used by the terminal shell.
	DBPath string
	// StateTable is the DynamoDB table used by the Lambda shell.
	StateTable string
	// ParamPrefix enables the SSM overlay when non-empty.
	ParamPrefix string
}

// LoadDotEnv loads files (default ".env") into the environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("config: load dotenv: %w", err)
	}
	return nil
}

// Load reads Config from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	delayMS, err := envInt(getenv, "BRAINBOX_THINKING_DELAY_MS", int(defaultThinkingDelay/time.Millisecond))
	if err != nil {
		return Config{}, err
	}
	if delayMS < 0 {
		return Config{}, fmt.Errorf("config: BRAINBOX_THINKING_DELAY_MS must not be negative, got %d", delayMS)
	}
	maxLen, err := envInt(getenv, "BRAINBOX_MAX_MESSAGE_LENGTH", defaultMaxMessageLength)
	if err != nil {
		return Config{}, err
	}

	dbPath := strings.TrimSpace(getenv("BRAINBOX_DB_PATH"))
	if dbPath == "" {
		dbPath = defaultDBPath(getenv)
	}

	return Config{
		StorageKey:       envOrDefault(getenv, "BRAINBOX_STORAGE_KEY", defaultStorageKey),
		ThinkingDelay:    time.Duration(delayMS) * time.Millisecond,
		MaxMessageLength: maxLen,
		DBPath:           dbPath,
		StateTable:       strings.TrimSpace(getenv("STATE_TABLE")),
		ParamPrefix:      strings.TrimRight(strings.TrimSpace(getenv("PARAM_PREFIX")), "/"),
	}, nil
}

// ParamLookup is satisfied by paramstore.Client.
type ParamLookup interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
}

// ApplyParams overlays storage_key and thinking_delay_ms from SSM under
// ParamPrefix. Absent parameters keep the environment value.
func (c Config) ApplyParams(ctx context.Context, params ParamLookup) (Config, error) {
	if c.ParamPrefix == "" || params == nil {
		return c, nil
	}

	key, ok, err := params.Lookup(ctx, c.ParamPrefix+"/storage_key")
	if err != nil {
		return c, fmt.Errorf("config: load storage key: %w", err)
	}
	if ok && strings.TrimSpace(key) != "" {
		c.StorageKey = strings.TrimSpace(key)
	}

	raw, ok, err := params.Lookup(ctx, c.ParamPrefix+"/thinking_delay_ms")
	if err != nil {
		return c, fmt.Errorf("config: load thinking delay: %w", err)
	}
	if ok {
		ms, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || ms < 0 {
			return c, fmt.Errorf("config: invalid thinking_delay_ms %q", raw)
		}
		c.ThinkingDelay = time.Duration(ms) * time.Millisecond
	}
	return c, nil
}

func defaultDBPath(getenv func(string) string) string {
	home := strings.TrimSpace(getenv("HOME"))
	if home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, ".brainbox", "brainbox.db")
}

func envOrDefault(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(getenv func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}
