// Package config provides configuration loading, validation and persistence
// for the CLI and the interactive session.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/llm"
	"github.com/jonathan/banana-cli/internal/schemas"
)

// Environment variables consulted at load time
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
	EnvConfigPath  = "BANANA_CONFIG"
	EnvDataDir     = "BANANA_DATA_DIR"
)

// DefaultOutputDirectory is where images are written unless configured
const DefaultOutputDirectory = "./banana-output"

// ErrMissingAPIKey is returned when a generation is attempted without a key
var ErrMissingAPIKey = errors.New("API key not configured (set " + EnvAPIKey + " or run: banana config set api.key <key>)")

// Display controls what happens with downloaded images
type Display string

// Display modes
const (
	DisplayTerminal Display = "terminal"
	DisplayViewer   Display = "viewer"
	DisplayNone     Display = "none"
)

// Theme is the interactive color theme
type Theme string

// Themes
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Config is the persisted configuration. Environment overrides are kept
// apart so they are never written back to disk.
type Config struct {
	API      APIConfig      `json:"api"`
	Defaults DefaultsConfig `json:"defaults"`
	Output   OutputConfig   `json:"output"`
	TUI      TUIConfig      `json:"tui"`
	Store    StoreConfig    `json:"store"`

	path           string
	envAPIKey      string
	envDatabaseURL string
}

// APIConfig configures the generation service
type APIConfig struct {
	Key       string `json:"key,omitempty"`                                // Gemini API key
	Model     string `json:"model" validate:"required"`                    // Default model id
	BaseURL   string `json:"base_url" validate:"required,url"`             // API root
	Transport string `json:"transport" validate:"required,oneof=rest sdk"` // rest or sdk
}

// DefaultsConfig holds default generation parameters
type DefaultsConfig struct {
	AspectRatio string `json:"aspect_ratio" validate:"required,oneof=1:1 2:3 3:2 3:4 4:3 4:5 5:4 9:16 16:9 21:9"`
	Size        string `json:"size" validate:"required,oneof=1K 2K 4K"`
}

// OutputConfig controls artifact downloads
type OutputConfig struct {
	Directory    string  `json:"directory" validate:"required"`
	AutoDownload bool    `json:"auto_download"`
	Display      Display `json:"display" validate:"required,oneof=terminal viewer none"`
}

// TUIConfig controls the interactive session
type TUIConfig struct {
	ShowImages bool  `json:"show_images"`
	Theme      Theme `json:"theme" validate:"required,oneof=dark light"`
}

// StoreConfig selects the job store. An empty DatabaseURL means the local
// file store.
type StoreConfig struct {
	DatabaseURL string `json:"database_url,omitempty" validate:"omitempty,url"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			Model:     job.DefaultModel,
			BaseURL:   llm.DefaultBaseURL,
			Transport: string(llm.TransportREST),
		},
		Defaults: DefaultsConfig{
			AspectRatio: string(job.DefaultAspectRatio),
			Size:        string(job.DefaultSize),
		},
		Output: OutputConfig{
			Directory:    DefaultOutputDirectory,
			AutoDownload: true,
			Display:      DisplayTerminal,
		},
		TUI: TUIConfig{
			ShowImages: true,
			Theme:      ThemeDark,
		},
	}
}

// DefaultPath returns $BANANA_CONFIG or <user config dir>/banana/config.json
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "banana", "config.json"), nil
}

// DataDir returns $BANANA_DATA_DIR, $XDG_DATA_HOME/banana or
// ~/.local/share/banana
func DataDir() (string, error) {
	if d := os.Getenv(EnvDataDir); d != "" {
		return d, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "banana"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "banana"), nil
}

// LoadConfig loads configuration from a JSON file. A missing file yields
// the defaults. Values present in the file override the defaults; the file
// must match the config schema and pass Validate.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := schemas.ValidateConfig(data); err != nil {
			return nil, fmt.Errorf("config error in %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	cfg.envAPIKey = os.Getenv(EnvAPIKey)
	cfg.envDatabaseURL = os.Getenv(EnvDatabaseURL)
	return cfg, nil
}

// Save writes the configuration to its path, creating the directory.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", c.path, err)
	}
	return nil
}

// Reset restores the defaults, keeping the path and environment overrides.
func (c *Config) Reset() {
	path, key, dbURL := c.path, c.envAPIKey, c.envDatabaseURL
	*c = *Default()
	c.path, c.envAPIKey, c.envDatabaseURL = path, key, dbURL
}

// Path returns the file the configuration is loaded from and saved to
func (c *Config) Path() string {
	return c.path
}

// WithPath returns a copy of c bound to path
func (c *Config) WithPath(path string) *Config {
	cp := *c
	cp.path = path
	return &cp
}

// APIKey returns the effective key: the environment wins over the file
func (c *Config) APIKey() string {
	if c.envAPIKey != "" {
		return c.envAPIKey
	}
	return c.API.Key
}

// RequireAPIKey returns the effective key or ErrMissingAPIKey
func (c *Config) RequireAPIKey() (string, error) {
	key := c.APIKey()
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// DatabaseURL returns the effective database URL, environment first
func (c *Config) DatabaseURL() string {
	if c.envDatabaseURL != "" {
		return c.envDatabaseURL
	}
	return c.Store.DatabaseURL
}

// LLMConfig builds the client configuration
func (c *Config) LLMConfig() *llm.Config {
	return llm.DefaultConfig().
		WithTransport(llm.Transport(c.API.Transport)).
		WithBaseURL(c.API.BaseURL)
}

// Params returns generation parameters for prompt using the configured
// defaults. Values that fail to parse fall back to the job defaults.
func (c *Config) Params(prompt string) job.Params {
	p := job.Params{Prompt: prompt, Model: c.API.Model}
	if ar, err := job.ParseAspectRatio(c.Defaults.AspectRatio); err == nil {
		p.AspectRatio = ar
	}
	if size, err := job.ParseSize(c.Defaults.Size); err == nil {
		p.Size = size
	}
	return p
}
