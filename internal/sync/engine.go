// Package sync orchestrates reconciliation between the device-local store
// and the shared remote document. Pulls are always-overwrite: the remote
// copy is authoritative and replaces every local collection wholesale.
// Pushes replace the whole remote document, so concurrent writers resolve
// by last-writer-wins at document granularity. The finer-grained heuristic
// merge lives in the repository's manual-import path, not here.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/nhle/crewcheck/internal/model"
	"github.com/nhle/crewcheck/internal/remote"
	"github.com/nhle/crewcheck/internal/store"
)

// State is the engine's connection state.
type State int

const (
	// StateDisconnected means no remote config is present; the device is
	// in local-only mode.
	StateDisconnected State = iota

	// StateIdle means a remote config is present and polling is active.
	StateIdle

	// StateSyncing means a pull or push is in flight.
	StateSyncing
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	default:
		return "unknown"
	}
}

// fetchTimeout is the maximum time allowed for a single remote operation.
const fetchTimeout = 30 * time.Second

// defaultInterval is the polling cadence when none is configured.
const defaultInterval = 10 * time.Second

// Engine owns all sync state for one device session: the stored remote
// config, the polling goroutine, the in-flight guard, and the last-sync
// time. Construct one per process and share it by reference; tests can run
// isolated instances side by side.
type Engine struct {
	store    store.Store
	remote   remote.Client
	notifier *Notifier
	logger   *slog.Logger
	interval time.Duration

	mu       gosync.Mutex
	cfg      *model.RemoteConfig
	syncing  bool
	lastSync time.Time
	stopCh   chan struct{}
}

// New creates an Engine. A nil logger falls back to slog.Default; a
// non-positive interval falls back to the default cadence.
func New(
	s store.Store,
	rc remote.Client,
	n *Notifier,
	logger *slog.Logger,
	interval time.Duration,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Engine{
		store:    s,
		remote:   rc,
		notifier: n,
		logger:   logger,
		interval: interval,
	}
}

// Notifier returns the change bus consumers subscribe to.
func (e *Engine) Notifier() *Notifier {
	return e.notifier
}

// State reports the current connection state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.cfg == nil:
		return StateDisconnected
	case e.syncing:
		return StateSyncing
	default:
		return StateIdle
	}
}

// LastSync returns when the last successful pull completed, or the zero
// time if none has.
func (e *Engine) LastSync() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSync
}

// RemoteConfig returns a copy of the active remote config, or nil when
// disconnected.
func (e *Engine) RemoteConfig() *model.RemoteConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cfg == nil {
		return nil
	}
	cfg := *e.cfg
	return &cfg
}

// Start resumes a previously configured connection after process restart:
// it loads the stored remote config and, if present, begins polling with an
// immediate silent pull. With no stored config it is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	var cfg model.RemoteConfig
	found, err := e.store.Get(ctx, store.KeyRemoteConfig, &cfg)
	if err != nil {
		return fmt.Errorf("loading remote config: %w", err)
	}
	if !found {
		return nil
	}

	e.mu.Lock()
	e.cfg = &cfg
	e.mu.Unlock()

	e.startPolling(true)
	return nil
}

// Configure persists the remote config, transitions to connected, performs
// one immediate pull, and starts the recurring silent poll.
func (e *Engine) Configure(ctx context.Context, cfg model.RemoteConfig) error {
	if err := e.store.Set(ctx, store.KeyRemoteConfig, cfg); err != nil {
		return fmt.Errorf("persisting remote config: %w", err)
	}

	e.mu.Lock()
	e.cfg = &cfg
	e.mu.Unlock()

	e.startPolling(false)

	if _, err := e.Pull(ctx, false); err != nil {
		// The connection is configured even if the first pull fails; the
		// poll loop retries on the next tick.
		e.logger.Warn("initial pull failed", "error", err)
	}
	return nil
}

// Disconnect stops polling and clears the stored remote config. The local
// cache is retained for offline viewing.
func (e *Engine) Disconnect(ctx context.Context) error {
	e.stopPolling()

	e.mu.Lock()
	e.cfg = nil
	e.mu.Unlock()

	if err := e.store.Remove(ctx, store.KeyRemoteConfig); err != nil {
		return fmt.Errorf("clearing remote config: %w", err)
	}
	return nil
}

// Pull fetches the remote document and overwrites local state with it.
// The remote copy is authoritative: no merge, no timestamp comparison.
//
// It returns (false, nil) when another pull is already in flight: the
// request is dropped, not queued. On fetch failure local state is left
// untouched; silent failures only log, non-silent ones also publish a
// KindSyncStatus event.
func (e *Engine) Pull(ctx context.Context, silent bool) (bool, error) {
	e.mu.Lock()
	if e.cfg == nil {
		e.mu.Unlock()
		return false, fmt.Errorf("pull: not connected")
	}
	if e.syncing {
		e.mu.Unlock()
		return false, nil
	}
	e.syncing = true
	cfg := *e.cfg
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	doc, err := e.remote.Fetch(fetchCtx, cfg)
	if err != nil {
		if remote.IsAuthError(err) {
			// A rejected credential will not heal on the next tick; stop
			// polling and let the UI prompt for reconnection.
			e.logger.Warn("pull rejected, pausing polling", "error", err)
			e.notifier.Publish(Event{Kind: KindSyncStatus, Err: err})
			e.stopPolling()
			return false, err
		}
		if silent {
			e.logger.Debug("silent pull failed", "error", err)
		} else {
			e.logger.Warn("pull failed", "error", err)
			e.notifier.Publish(Event{Kind: KindSyncStatus, Err: err})
		}
		return false, err
	}

	if err := e.applyRemote(ctx, *doc); err != nil {
		return false, err
	}

	e.mu.Lock()
	e.lastSync = time.Now()
	e.mu.Unlock()

	return true, nil
}

// Persist writes the full snapshot to the local store synchronously, emits
// change notifications immediately, then pushes to the remote store in the
// background. The caller's action succeeds as soon as the local write does;
// a failed push surfaces only as an advisory KindSyncStatus event. There is
// no retry queue; the next Persist or the smart-merge import path recovers
// anything a lost push dropped.
//
// kinds names which collections the caller changed; with none given, all
// data kinds are notified.
func (e *Engine) Persist(ctx context.Context, snap model.SystemData, kinds ...ChangeKind) error {
	if err := e.writeSnapshot(ctx, snap); err != nil {
		return err
	}

	if len(kinds) == 0 {
		kinds = []ChangeKind{KindTasks, KindEmployees, KindAnnouncements, KindSettings}
	}
	for _, k := range kinds {
		e.notifier.Publish(Event{Kind: k})
	}

	e.mu.Lock()
	cfg := e.cfg
	if cfg != nil {
		c := *cfg
		cfg = &c
	}
	e.mu.Unlock()

	if cfg == nil {
		return nil
	}

	go func() {
		pushCtx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := e.remote.Replace(pushCtx, *cfg, snap); err != nil {
			e.logger.Warn("push failed, change may not be synced", "error", err)
			e.notifier.Publish(Event{Kind: KindSyncStatus, Err: fmt.Errorf("push: %w", err)})
		}
	}()

	return nil
}

// writeSnapshot stores every collection of the snapshot. All local
// persistence flows through this one path so capacity errors surface
// uniformly as store.ErrCapacityExceeded.
func (e *Engine) writeSnapshot(ctx context.Context, snap model.SystemData) error {
	if err := e.store.Set(ctx, store.KeyTasks, snap.Tasks); err != nil {
		return fmt.Errorf("persisting tasks: %w", err)
	}
	if err := e.store.Set(ctx, store.KeyEmployees, snap.Employees); err != nil {
		return fmt.Errorf("persisting employees: %w", err)
	}
	if err := e.store.Set(ctx, store.KeyAnnouncements, snap.Announcements); err != nil {
		return fmt.Errorf("persisting announcements: %w", err)
	}
	if err := e.store.Set(ctx, store.KeyAdminPassword, snap.AdminPassword); err != nil {
		return fmt.Errorf("persisting admin password: %w", err)
	}
	if err := e.store.Set(ctx, store.KeyAccessCode, snap.AccessCode); err != nil {
		return fmt.Errorf("persisting access code: %w", err)
	}
	return nil
}

// applyRemote overwrites local collections with the pulled document and
// notifies subscribers. Credential-like singletons are only applied when
// present in the document; absent means the local value is retained.
func (e *Engine) applyRemote(ctx context.Context, doc model.SystemData) error {
	if err := e.store.Set(ctx, store.KeyTasks, doc.Tasks); err != nil {
		return fmt.Errorf("applying remote tasks: %w", err)
	}
	if err := e.store.Set(ctx, store.KeyEmployees, doc.Employees); err != nil {
		return fmt.Errorf("applying remote employees: %w", err)
	}
	if err := e.store.Set(ctx, store.KeyAnnouncements, doc.Announcements); err != nil {
		return fmt.Errorf("applying remote announcements: %w", err)
	}

	settingsChanged := false
	if doc.AdminPassword != "" {
		if err := e.store.Set(ctx, store.KeyAdminPassword, doc.AdminPassword); err != nil {
			return fmt.Errorf("applying remote admin password: %w", err)
		}
		settingsChanged = true
	}
	if doc.AccessCode != "" {
		if err := e.store.Set(ctx, store.KeyAccessCode, doc.AccessCode); err != nil {
			return fmt.Errorf("applying remote access code: %w", err)
		}
		settingsChanged = true
	}

	e.notifier.Publish(Event{Kind: KindTasks})
	e.notifier.Publish(Event{Kind: KindEmployees})
	e.notifier.Publish(Event{Kind: KindAnnouncements})
	if settingsChanged {
		e.notifier.Publish(Event{Kind: KindSettings})
	}
	return nil
}

// startPolling launches the recurring poll goroutine if it is not already
// running. With initialPull set, the loop performs one silent pull before
// the first tick.
func (e *Engine) startPolling(initialPull bool) {
	e.mu.Lock()
	if e.stopCh != nil {
		e.mu.Unlock()
		return
	}
	stopCh := make(chan struct{})
	e.stopCh = stopCh
	e.mu.Unlock()

	go e.pollLoop(stopCh, initialPull)
}

// stopPolling halts the poll goroutine. Safe to call when not polling.
func (e *Engine) stopPolling() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
}

// pollLoop runs silent pulls on a fixed interval until stopped. The ticker
// keeps firing regardless of how long a pull takes; the in-flight guard in
// Pull drops overlapping attempts.
func (e *Engine) pollLoop(stopCh <-chan struct{}, initialPull bool) {
	if initialPull {
		_, _ = e.Pull(context.Background(), true)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			_, _ = e.Pull(context.Background(), true)
		}
	}
}
