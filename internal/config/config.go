package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings shelf reads at startup.
type Config struct {
	APIBaseURL        string
	DataDir           string
	SessionMinutes    int
	FetchLimit        int
	RequestsPerSecond float64
	RemoteEcho        bool
	LogLevel          string
	Store             Store
}

// Store selects the persistent key-value backend.
type Store struct {
	Backend     string
	RedisAddr   string
	RedisPrefix string
	SQLitePath  string
}

// EnvAPIURL overrides api_base_url when set.
const EnvAPIURL = "SHELF_API_URL"

const (
	defaultConfigPath        = "~/.config/shelf/config.toml"
	defaultAPIBaseURL        = "https://dummyjson.com"
	defaultDataDir           = "~/.local/share/shelf"
	defaultSessionMinutes    = 30
	defaultRequestsPerSecond = 10
	defaultLogLevel          = "info"
	defaultBackend           = "file"
	defaultRedisAddr         = "127.0.0.1:6379"
	defaultRedisPrefix       = "shelf:"
)

type rawConfig struct {
	APIBaseURL        string   `toml:"api_base_url"`
	DataDir           string   `toml:"data_dir"`
	SessionMinutes    int      `toml:"session_minutes"`
	FetchLimit        int      `toml:"fetch_limit"`
	RequestsPerSecond *float64 `toml:"requests_per_second"`
	RemoteEcho        bool     `toml:"remote_echo"`
	LogLevel          string   `toml:"log_level"`
	Store             struct {
		Backend     string `toml:"backend"`
		RedisAddr   string `toml:"redis_addr"`
		RedisPrefix string `toml:"redis_prefix"`
		SQLitePath  string `toml:"sqlite_path"`
	} `toml:"store"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg, _ := normalize(rawConfig{})
	return cfg
}

// Load reads the shelf config, falling back to defaults when the file is
// missing. SHELF_API_URL wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if env := strings.TrimSpace(os.Getenv(EnvAPIURL)); env != "" {
		raw.APIBaseURL = env
	}
	return normalize(raw)
}

func normalize(raw rawConfig) (Config, error) {
	cfg := Config{
		APIBaseURL:        strings.TrimRight(strings.TrimSpace(raw.APIBaseURL), "/"),
		DataDir:           strings.TrimSpace(raw.DataDir),
		SessionMinutes:    raw.SessionMinutes,
		FetchLimit:        raw.FetchLimit,
		RequestsPerSecond: defaultRequestsPerSecond,
		RemoteEcho:        raw.RemoteEcho,
		LogLevel:          strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		Store: Store{
			Backend:     strings.ToLower(strings.TrimSpace(raw.Store.Backend)),
			RedisAddr:   strings.TrimSpace(raw.Store.RedisAddr),
			RedisPrefix: strings.TrimSpace(raw.Store.RedisPrefix),
			SQLitePath:  strings.TrimSpace(raw.Store.SQLitePath),
		},
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	cfg.DataDir = mustExpand(cfg.DataDir)
	if cfg.SessionMinutes <= 0 {
		cfg.SessionMinutes = defaultSessionMinutes
	}
	if cfg.FetchLimit < 0 {
		cfg.FetchLimit = 0
	}
	if raw.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = max(*raw.RequestsPerSecond, 0)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	switch cfg.Store.Backend {
	case "":
		cfg.Store.Backend = defaultBackend
	case "file", "memory", "redis", "sqlite":
	default:
		return Config{}, fmt.Errorf("unknown store backend %q", raw.Store.Backend)
	}
	if cfg.Store.RedisAddr == "" {
		cfg.Store.RedisAddr = defaultRedisAddr
	}
	if cfg.Store.RedisPrefix == "" {
		cfg.Store.RedisPrefix = defaultRedisPrefix
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = filepath.Join(cfg.DataDir, "shelf.db")
	} else {
		cfg.Store.SQLitePath = mustExpand(cfg.Store.SQLitePath)
	}
	return cfg, nil
}

// LogPath returns the path of the shelf log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/shelf.log")
	}
	return filepath.Join(c.DataDir, "shelf.log")
}

// StoreDir is where the file backend keeps its keys.
func (c Config) StoreDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/store")
	}
	return filepath.Join(c.DataDir, "store")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
