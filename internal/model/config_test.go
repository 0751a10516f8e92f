package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.jsonbin.io/v3/b", cfg.Sync.StoreURL)
	assert.Equal(t, 10, cfg.Sync.PollIntervalSec)
	assert.NotEmpty(t, cfg.AI.Model)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crewcheck", "config.yaml")

	want := &AppConfig{
		Sync:    SyncConfig{StoreURL: "https://store.example/v1", PollIntervalSec: 30},
		Storage: StorageConfig{DBPath: "/tmp/crew.db", MaxBytes: 1 << 20},
		AI:      AIConfig{Model: "test-model", MaxTokens: 512},
		Upload:  UploadConfig{URL: "https://img.example/upload", Preset: "crew"},
	}
	require.NoError(t, SaveConfig(path, want))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfigClampsBadInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &AppConfig{Sync: SyncConfig{StoreURL: "https://store.example", PollIntervalSec: -5}}
	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Sync.PollIntervalSec)
}
