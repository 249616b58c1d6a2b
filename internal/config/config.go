// Package config loads and persists SocialStudio configuration.
// Configuration lives as YAML in the studio home directory
// (~/.socialstudio by default); the Gemini API key may also be supplied
// through the environment or a .env file, which always wins over the
// file value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all SocialStudio configuration.
type Config struct {
	Gemini  GeminiConfig  `yaml:"gemini"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the generation gateway.
type GeminiConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	PlanModel    string `yaml:"plan_model"`
	ImageModel   string `yaml:"image_model"`
	ConsultModel string `yaml:"consult_model"`
	Timeout      string `yaml:"timeout"`
}

// StorageConfig configures the local store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories,omitempty"`
	Level      string          `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			BaseURL:      "https://generativelanguage.googleapis.com/v1beta",
			PlanModel:    "gemini-3-flash-preview",
			ImageModel:   "gemini-2.5-flash-image",
			ConsultModel: "gemini-3-pro-preview",
			Timeout:      "2m",
		},
		Storage: StorageConfig{
			DatabasePath: "studio.db",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// HomeDir returns the studio home directory. SOCIALSTUDIO_HOME
// overrides the default ~/.socialstudio.
func HomeDir() string {
	if home := os.Getenv("SOCIALSTUDIO_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".socialstudio"
	}
	return filepath.Join(userHome, ".socialstudio")
}

// ConfigPath returns the path of the config file under home.
func ConfigPath(home string) string {
	return filepath.Join(home, "config.yaml")
}

// LoadDotEnv loads a .env file from the working directory if present.
// Missing files are fine; only credentials are expected here.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads configuration from the given path, falling back to
// defaults when the file is absent, and applies env overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if url := os.Getenv("GEMINI_BASE_URL"); url != "" {
		c.Gemini.BaseURL = url
	}
	if path := os.Getenv("SOCIALSTUDIO_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
}

// GetGeminiTimeout parses the configured gateway timeout.
func (c *Config) GetGeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// DatabasePath resolves the store path relative to home unless it is
// already absolute.
func (c *Config) DatabasePath(home string) string {
	if filepath.IsAbs(c.Storage.DatabasePath) {
		return c.Storage.DatabasePath
	}
	return filepath.Join(home, c.Storage.DatabasePath)
}

// Validate checks configuration invariants that would otherwise fail
// deep inside the gateway.
func (c *Config) Validate() error {
	if c.Gemini.BaseURL == "" {
		return fmt.Errorf("gemini base_url is required")
	}
	if c.Gemini.PlanModel == "" || c.Gemini.ImageModel == "" || c.Gemini.ConsultModel == "" {
		return fmt.Errorf("gemini models must be configured")
	}
	return nil
}
