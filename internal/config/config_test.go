package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvAPIURL, "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}

	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.SessionMinutes != 30 || cfg.FetchLimit != 0 || cfg.RequestsPerSecond != 10 {
		t.Fatalf("unexpected numeric defaults %+v", cfg)
	}
	if cfg.RemoteEcho || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Store.Backend != "file" || cfg.Store.RedisPrefix != "shelf:" {
		t.Fatalf("unexpected store defaults %+v", cfg.Store)
	}
	if cfg.Store.SQLitePath != filepath.Join(wantDataDir, "shelf.db") {
		t.Fatalf("SQLitePath = %q", cfg.Store.SQLitePath)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvAPIURL, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base_url = "  http://localhost:8080/  "
data_dir = "  ~/.shelf  "
session_minutes = 60
fetch_limit = 50
requests_per_second = 0.0
remote_echo = true
log_level = " DEBUG "

[store]
backend = "Redis"
redis_addr = "10.0.0.5:6380"
redis_prefix = "test:"
sqlite_path = "~/db/shelf.sqlite"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.SessionMinutes != 60 || cfg.FetchLimit != 50 || cfg.RequestsPerSecond != 0 {
		t.Fatalf("unexpected numeric fields %+v", cfg)
	}
	if !cfg.RemoteEcho || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected fields %+v", cfg)
	}
	want := Store{Backend: "redis", RedisAddr: "10.0.0.5:6380", RedisPrefix: "test:", SQLitePath: filepath.Join(home, "db", "shelf.sqlite")}
	if cfg.Store != want {
		t.Fatalf("Store = %+v, want %+v", cfg.Store, want)
	}
	if cfg.LogPath() != filepath.Join(cfg.DataDir, "shelf.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
	if cfg.StoreDir() != filepath.Join(cfg.DataDir, "store") {
		t.Fatalf("StoreDir = %q", cfg.StoreDir())
	}
}

func TestLoad_EnvOverridesAPIURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIURL, "https://staging.example.com")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_base_url = "https://file.example.com"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != "https://staging.example.com" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIURL, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_base_url = "   "
data_dir = ""
session_minutes = -5
fetch_limit = -1

[store]
backend = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, defaultAPIBaseURL)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.SessionMinutes != defaultSessionMinutes || cfg.FetchLimit != 0 || cfg.Store.Backend != "file" {
		t.Fatalf("unexpected fallbacks %+v", cfg)
	}
}

func TestLoad_UnknownBackendFails(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[store]\nbackend = \"etcd\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "etcd") {
		t.Fatalf("Load error = %v, want unknown backend", err)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_base_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenDataDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/shelf.log")) {
		t.Fatalf("LogPath = %q, want it to end with /shelf.log", got)
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := Default()
	if cfg.APIBaseURL != defaultAPIBaseURL || cfg.Store.Backend != defaultBackend {
		t.Fatalf("unexpected default %+v", cfg)
	}
}
