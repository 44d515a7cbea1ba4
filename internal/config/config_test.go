package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	apierrors "github.com/diogo/zaril/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultModel != "llama-3.3-70b-versatile" {
		t.Errorf("Expected default model 'llama-3.3-70b-versatile', got '%s'", cfg.DefaultModel)
	}
	if cfg.Greeting != "Zaril AI" {
		t.Errorf("Expected greeting 'Zaril AI', got '%s'", cfg.Greeting)
	}
	if cfg.RequestTimeoutSeconds != 300 {
		t.Errorf("Expected RequestTimeoutSeconds 300, got %d", cfg.RequestTimeoutSeconds)
	}
	if cfg.Verbose {
		t.Error("Expected Verbose to be false")
	}
	if cfg.RenderCacheSize <= 0 {
		t.Errorf("Expected positive RenderCacheSize, got %d", cfg.RenderCacheSize)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("GetConfigPath() returned relative path: %s", path)
	}
	if filepath.Base(path) != "config.json" || filepath.Base(filepath.Dir(path)) != ".zaril" {
		t.Errorf("unexpected config path %s", path)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg := DefaultConfig()
	cfg.DefaultModel = "qwen/qwen3-32b"
	cfg.Verbose = true

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmpDir, ".zaril", "config.json"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file permissions = %o, want 600", perm)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded.DefaultModel != "qwen/qwen3-32b" || !loaded.Verbose {
		t.Errorf("loaded config mismatch: %+v", loaded)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	dir := filepath.Join(tmpDir, ".zaril")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(map[string]any{"greeting": "Hi"})
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.Greeting != "Hi" {
		t.Errorf("Greeting = %q, want Hi", cfg.Greeting)
	}
	if cfg.DefaultModel != DefaultConfig().DefaultModel {
		t.Errorf("DefaultModel = %q, want default", cfg.DefaultModel)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	dir := filepath.Join(tmpDir, ".zaril")
	_ = os.MkdirAll(dir, 0o700)
	_ = os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600)

	cfg, err := LoadConfig()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg != DefaultConfig() {
		t.Error("expected defaults on parse error")
	}
}

func TestResolveAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		cfgKey  string
		groq    string
		vite    string
		want    string
		wantErr bool
	}{
		{"config wins", "cfg-key", "env-key", "vite-key", "cfg-key", false},
		{"groq env", "", "env-key", "vite-key", "env-key", false},
		{"vite fallback", "", "", "vite-key", "vite-key", false},
		{"nothing", "", "", "", "", true},
		{"whitespace only", "  ", " ", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIKey, tt.groq)
			t.Setenv(EnvViteAPIKey, tt.vite)

			cfg := DefaultConfig()
			cfg.APIKey = tt.cfgKey

			got, err := ResolveAPIKey(cfg)
			if tt.wantErr {
				if !apierrors.IsAuthError(err) {
					t.Fatalf("expected ErrNoAPIKey, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveAPIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("ZARIL_TEST_LOADENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ZARIL_TEST_LOADENV", "")
	os.Unsetenv("ZARIL_TEST_LOADENV")

	if err := LoadEnv(envFile); err != nil {
		t.Fatalf("LoadEnv() returned error: %v", err)
	}
	if got := os.Getenv("ZARIL_TEST_LOADENV"); got != "from-file" {
		t.Errorf("ZARIL_TEST_LOADENV = %q, want from-file", got)
	}

	if err := LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should not be an error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://localhost:9999/v1")
	t.Setenv(EnvModel, "llama-3.1-8b-instant")

	cfg := ApplyEnv(DefaultConfig())
	if cfg.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.DefaultModel != "llama-3.1-8b-instant" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
}

func TestConfigSet(t *testing.T) {
	cfg := DefaultConfig()

	valid := map[string]string{
		"default_model":           "qwen/qwen3-32b",
		"base_url":                "http://localhost:8000/v1/",
		"request_timeout_seconds": "0",
		"verbose":                 "true",
		"copy_to_clipboard":       "yes-not-bool",
	}
	for key, value := range valid {
		err := cfg.Set(key, value)
		if key == "copy_to_clipboard" {
			if err == nil {
				t.Error("expected error for invalid bool")
			}
			continue
		}
		if err != nil {
			t.Errorf("Set(%s) returned error: %v", key, err)
		}
	}

	if cfg.BaseURL != "http://localhost:8000/v1" {
		t.Errorf("BaseURL trailing slash not trimmed: %q", cfg.BaseURL)
	}
	if cfg.RequestTimeoutSeconds != 0 || !cfg.Verbose {
		t.Errorf("unexpected config %+v", cfg)
	}

	if err := cfg.Set("render_cache_size", "0"); err == nil {
		t.Error("expected error for zero cache size")
	}
	if err := cfg.Set("nope", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestRedacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "gsk_1234567890abcd"

	r := cfg.Redacted()
	if r.APIKey != "********abcd" {
		t.Errorf("Redacted().APIKey = %q", r.APIKey)
	}
	if cfg.APIKey != "gsk_1234567890abcd" {
		t.Error("Redacted() modified the original")
	}
	if MaskKey("abc") != "****" {
		t.Errorf("MaskKey(short) = %q", MaskKey("abc"))
	}
}
