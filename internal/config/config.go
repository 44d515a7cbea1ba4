// Package config handles configuration and credential resolution for zaril.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	apierrors "github.com/diogo/zaril/internal/errors"
	"github.com/diogo/zaril/internal/models"
)

// Environment variables consulted when resolving settings
const (
	EnvAPIKey     = "GROQ_API_KEY"
	EnvViteAPIKey = "VITE_GROQ_API_KEY" // name used by the browser build
	EnvBaseURL    = "ZARIL_BASE_URL"
	EnvModel      = "ZARIL_MODEL"
)

// Config represents the user configuration
type Config struct {
	DefaultModel string `json:"default_model"`
	BaseURL      string `json:"base_url"`
	// Greeting is the content of the assistant message every transcript starts with.
	Greeting string `json:"greeting"`
	// RequestTimeoutSeconds bounds a whole completion request, stream included.
	// Zero disables the bound: a stalled stream then keeps the session busy until cancelled.
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
	// Verbose enables request/response logging (never headers or bodies).
	Verbose         bool   `json:"verbose"`
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	LogFile         string `json:"log_file,omitempty"`
	ServeAddr       string `json:"serve_addr"`
	CodeStyle       string `json:"code_style"` // glamour style for code blocks
	TUITheme        string `json:"tui_theme,omitempty"`
	RenderCacheSize int    `json:"render_cache_size"`
	// APIKey is optional; the environment is consulted when it is empty.
	APIKey string `json:"api_key,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DefaultModel:          models.DefaultModel.Name,
		BaseURL:               models.DefaultBaseURL,
		Greeting:              models.DefaultGreeting,
		RequestTimeoutSeconds: 300,
		Verbose:               false,
		CopyToClipboard:       false,
		ServeAddr:             ":8080",
		CodeStyle:             "dark",
		TUITheme:              "tokyonight",
		RenderCacheSize:       256,
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".zaril"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory may hold an API key
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv reads a .env file from the working directory into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	var existing []string
	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			existing = append(existing, name)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv returns cfg with environment overrides applied
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModel)); v != "" {
		cfg.DefaultModel = v
	}
	return cfg
}

// ResolveAPIKey returns the API key from the config file or the environment
func ResolveAPIKey(cfg Config) (string, error) {
	key := firstNonEmpty(
		strings.TrimSpace(cfg.APIKey),
		strings.TrimSpace(os.Getenv(EnvAPIKey)),
		strings.TrimSpace(os.Getenv(EnvViteAPIKey)),
	)
	if key == "" {
		return "", fmt.Errorf("set %s or api_key in the config file: %w", EnvAPIKey, apierrors.ErrNoAPIKey)
	}
	return key, nil
}

// Set assigns a config field by its JSON key
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "default_model":
		c.DefaultModel = value
	case "base_url":
		c.BaseURL = strings.TrimRight(value, "/")
	case "greeting":
		c.Greeting = value
	case "request_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer", key)
		}
		c.RequestTimeoutSeconds = n
	case "verbose", "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		if key == "verbose" {
			c.Verbose = b
		} else {
			c.CopyToClipboard = b
		}
	case "log_file":
		c.LogFile = value
	case "serve_addr":
		c.ServeAddr = value
	case "code_style":
		c.CodeStyle = value
	case "tui_theme":
		c.TUITheme = value
	case "render_cache_size":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
		c.RenderCacheSize = n
	case "api_key":
		c.APIKey = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Keys returns the settable config keys
func Keys() []string {
	keys := []string{
		"default_model", "base_url", "greeting", "request_timeout_seconds",
		"verbose", "copy_to_clipboard", "log_file", "serve_addr",
		"code_style", "tui_theme", "render_cache_size", "api_key",
	}
	sort.Strings(keys)
	return keys
}

// Redacted returns a copy safe to print
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = MaskKey(c.APIKey)
	}
	return c
}

// MaskKey hides all but the last four characters of a key
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
