package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SyncConfig holds settings for the background sync engine.
type SyncConfig struct {
	// StoreURL is the base URL of the remote document store.
	StoreURL string `mapstructure:"store_url" yaml:"store_url"`

	// PollIntervalSec is how often (in seconds) to pull the remote
	// document while connected.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// StorageConfig holds settings for the local store.
type StorageConfig struct {
	// DBPath is the SQLite database file. Empty means the default under
	// the user config directory.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// MaxBytes caps the total size of stored values. Zero means no cap.
	MaxBytes int64 `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// AIConfig holds settings for the checklist-suggestion service.
type AIConfig struct {
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// UploadConfig holds settings for the image-hosting service.
type UploadConfig struct {
	URL    string `mapstructure:"url" yaml:"url"`
	Preset string `mapstructure:"preset" yaml:"preset"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
	Upload  UploadConfig  `mapstructure:"upload" yaml:"upload"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/crewcheck/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "crewcheck", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Sync: SyncConfig{
			StoreURL:        "https://api.jsonbin.io/v3/b",
			PollIntervalSec: 10,
		},
		Storage: StorageConfig{},
		AI: AIConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 1024,
		},
		Upload: UploadConfig{},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("sync.store_url", "https://api.jsonbin.io/v3/b")
	v.SetDefault("sync.poll_interval_sec", 10)
	v.SetDefault("ai.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("ai.max_tokens", 1024)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.PollIntervalSec <= 0 {
		cfg.Sync.PollIntervalSec = 10
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("sync", cfg.Sync)
	v.Set("storage", cfg.Storage)
	v.Set("ai", cfg.AI)
	v.Set("upload", cfg.Upload)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
