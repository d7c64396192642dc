// Package config loads quorum configuration: TOML file, environment
// overrides, and sane defaults, in that precedence order.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the full quorum configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Gateway  GatewayConfig  `toml:"gateway"`
	Storage  StorageConfig  `toml:"storage"`
	Defaults DefaultsConfig `toml:"defaults"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AuthMode       string   `toml:"auth_mode"` // local or api_key
	APIKey         string   `toml:"api_key"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// GatewayConfig holds model-gateway settings.
type GatewayConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Path string `toml:"path"`
}

// DefaultsConfig holds per-request defaults the CLI and server fall back to.
type DefaultsConfig struct {
	Mode   string   `toml:"mode"`
	Models []string `toml:"models"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "quorum", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "quorum", "config.toml")
}

// DefaultDBPath returns the default SQLite database path.
func DefaultDBPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "quorum", "quorum.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "quorum", "quorum.db")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8377,
			AuthMode: "local",
		},
		Gateway: GatewayConfig{
			BaseURL: "https://openrouter.ai/api/v1",
		},
		Storage: StorageConfig{
			Path: DefaultDBPath(),
		},
		Defaults: DefaultsConfig{
			Mode: "council",
			Models: []string{
				"openai/gpt-4o",
				"anthropic/claude-3.7-sonnet",
				"google/gemini-2.5-pro",
			},
		},
	}
}

// Load loads configuration from a file. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

// LoadOrDefault loads the file when present, falling back to defaults plus
// environment overrides when it is missing.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = Default()
		applyEnv(cfg)
	}
	return cfg
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.AuthMode == "" {
		cfg.Server.AuthMode = def.Server.AuthMode
	}
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = def.Gateway.BaseURL
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = def.Storage.Path
	}
	if cfg.Defaults.Mode == "" {
		cfg.Defaults.Mode = def.Defaults.Mode
	}
	if len(cfg.Defaults.Models) == 0 {
		cfg.Defaults.Models = def.Defaults.Models
	}
}

// applyEnv applies environment variable overrides:
// QUORUM_API_KEY, QUORUM_BASE_URL, QUORUM_DB, QUORUM_PORT.
func applyEnv(cfg *Config) {
	if key := os.Getenv("QUORUM_API_KEY"); key != "" {
		cfg.Gateway.APIKey = key
	}
	if url := os.Getenv("QUORUM_BASE_URL"); url != "" {
		cfg.Gateway.BaseURL = url
	}
	if db := os.Getenv("QUORUM_DB"); db != "" {
		cfg.Storage.Path = db
	}
	if port := os.Getenv("QUORUM_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}

// CreateDefault creates a default config file at DefaultPath.
func CreateDefault() (string, error) {
	path := DefaultPath()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := Print(Default(), f); err != nil {
		return "", err
	}
	return path, nil
}

// Print writes config to a writer as commented TOML.
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# Quorum configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[server]")
	fmt.Fprintf(w, "host = %q\n", cfg.Server.Host)
	fmt.Fprintf(w, "port = %d\n", cfg.Server.Port)
	fmt.Fprintln(w, "# auth_mode: local (loopback only) or api_key")
	fmt.Fprintf(w, "auth_mode = %q\n", cfg.Server.AuthMode)
	if cfg.Server.APIKey != "" {
		fmt.Fprintf(w, "api_key = %q\n", cfg.Server.APIKey)
	} else {
		fmt.Fprintln(w, "# api_key = \"\"")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[gateway]")
	fmt.Fprintln(w, "# OpenRouter-compatible chat-completions endpoint")
	fmt.Fprintf(w, "base_url = %q\n", cfg.Gateway.BaseURL)
	fmt.Fprintln(w, "# api_key = \"\"  # Or set QUORUM_API_KEY")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[storage]")
	fmt.Fprintf(w, "path = %q\n", cfg.Storage.Path)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[defaults]")
	fmt.Fprintf(w, "mode = %q\n", cfg.Defaults.Mode)
	fmt.Fprint(w, "models = [")
	for i, m := range cfg.Defaults.Models {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%q", m)
	}
	fmt.Fprintln(w, "]")
	return nil
}
