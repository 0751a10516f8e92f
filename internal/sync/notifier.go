package sync

import gosync "sync"

// ChangeKind tags which slice of local state an event refers to, so
// consumers can subscribe narrowly instead of reacting to a generic
// "something changed" signal.
type ChangeKind string

const (
	// KindTasks fires when the task collection changed.
	KindTasks ChangeKind = "tasks"

	// KindEmployees fires when the employee list changed.
	KindEmployees ChangeKind = "employees"

	// KindAnnouncements fires when the announcement list changed.
	KindAnnouncements ChangeKind = "announcements"

	// KindSettings fires when the admin password or access code changed.
	KindSettings ChangeKind = "settings"

	// KindSyncStatus fires on sync lifecycle events: push or pull failures
	// and credential rejections. Err carries the failure.
	KindSyncStatus ChangeKind = "sync_status"
)

// Event is delivered to subscribers when local state changes or a sync
// operation reports status.
type Event struct {
	Kind ChangeKind

	// Err is set on KindSyncStatus events describing a failure. Data-change
	// events carry a nil Err.
	Err error
}

// Handler receives change events. Handlers run on the publisher's goroutine
// and must not block.
type Handler func(Event)

type handlerEntry struct {
	id int
	fn Handler
}

// Notifier is a thread-safe in-process change bus keyed by ChangeKind.
type Notifier struct {
	mu       gosync.RWMutex
	handlers map[ChangeKind][]handlerEntry
	nextID   int
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		handlers: make(map[ChangeKind][]handlerEntry),
	}
}

// Subscribe registers a handler for events of the given kind.
// The returned function unsubscribes the handler.
func (n *Notifier) Subscribe(kind ChangeKind, fn Handler) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.handlers[kind] = append(n.handlers[kind], handlerEntry{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		entries := n.handlers[kind]
		filtered := entries[:0]
		for _, e := range entries {
			if e.id != id {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			delete(n.handlers, kind)
		} else {
			n.handlers[kind] = filtered
		}
	}
}

// Publish delivers the event to every handler subscribed to its kind.
// Handlers are collected under the lock and invoked outside it.
func (n *Notifier) Publish(ev Event) {
	n.mu.RLock()
	entries := n.handlers[ev.Kind]
	targets := make([]Handler, len(entries))
	for i, e := range entries {
		targets[i] = e.fn
	}
	n.mu.RUnlock()

	for _, fn := range targets {
		fn(ev)
	}
}
