// Package app wires the application together: configuration, the local
// store, the remote client, the sync engine, and the domain services. A
// frontend embeds one App and talks to Repo and Notifier only.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nhle/crewcheck/internal/credential"
	"github.com/nhle/crewcheck/internal/model"
	"github.com/nhle/crewcheck/internal/remote"
	"github.com/nhle/crewcheck/internal/repo"
	"github.com/nhle/crewcheck/internal/store"
	"github.com/nhle/crewcheck/internal/suggest"
	syncengine "github.com/nhle/crewcheck/internal/sync"
	"github.com/nhle/crewcheck/internal/upload"
)

// App holds the assembled services for one device session.
type App struct {
	Config    *model.AppConfig
	Store     *store.SQLiteStore
	Engine    *syncengine.Engine
	Repo      *repo.Repository
	Suggester *suggest.Suggester
	Uploader  *upload.Uploader

	remote remote.Client
	logger *slog.Logger
}

// New loads configuration from the given path (empty means the default
// location), opens the local store, and assembles the services. Call Start
// to resume a previously configured sync connection.
func New(configPath string, logger *slog.Logger) (*App, error) {
	if configPath == "" {
		configPath = model.DefaultConfigPath()
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		dbPath, err = defaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	var opts []store.Option
	if cfg.Storage.MaxBytes > 0 {
		opts = append(opts, store.WithMaxBytes(cfg.Storage.MaxBytes))
	}
	s, err := store.NewSQLiteStore(dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	client := remote.NewHTTPClient(cfg.Sync.StoreURL)
	engine := syncengine.New(
		s, client, syncengine.NewNotifier(), logger,
		time.Duration(cfg.Sync.PollIntervalSec)*time.Second,
	)

	return &App{
		Config:    cfg,
		Store:     s,
		Engine:    engine,
		Repo:      repo.New(s, engine),
		Suggester: suggest.New(loadSuggestKey(), cfg.AI.Model, cfg.AI.MaxTokens),
		Uploader:  upload.New(cfg.Upload.URL, cfg.Upload.Preset),
		remote:    client,
		logger:    logger,
	}, nil
}

// CreateTeam provisions a new remote document seeded with the current local
// snapshot and connects sync to it. With an empty masterKey the key is read
// from the system keyring.
func (a *App) CreateTeam(ctx context.Context, name, masterKey string) (*model.RemoteConfig, error) {
	if masterKey == "" {
		var err error
		masterKey, err = credential.Get(credential.KeyStoreMasterKey)
		if err != nil {
			return nil, fmt.Errorf("no master key supplied and none stored: %w", err)
		}
	}

	snap, err := a.Repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := a.remote.Create(ctx, masterKey, snap, name)
	if err != nil {
		return nil, fmt.Errorf("provisioning remote store: %w", err)
	}

	if err := a.Engine.Configure(ctx, *cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Notifier returns the change bus frontends subscribe to.
func (a *App) Notifier() *syncengine.Notifier {
	return a.Engine.Notifier()
}

// Start resumes background sync when a remote config was stored in a
// previous session.
func (a *App) Start(ctx context.Context) error {
	return a.Engine.Start(ctx)
}

// Close releases the local store.
func (a *App) Close() error {
	return a.Store.Close()
}

// loadSuggestKey loads the suggestion API key from the environment or the
// system keyring. An empty key disables suggestions.
func loadSuggestKey() string {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key
	}
	key, err := credential.Get(credential.KeySuggestAPIKey)
	if err != nil {
		return ""
	}
	return key
}

// defaultDBPath returns the default database location under the user config
// directory, creating parent directories as needed.
func defaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "crewcheck")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return filepath.Join(dir, "crewcheck.db"), nil
}
