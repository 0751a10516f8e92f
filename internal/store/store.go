// Package store implements the device-local persistence layer: a durable
// key-to-JSON store backed by SQLite. It survives process restarts but is
// scoped to one device; cross-device state lives in the remote document
// store and flows through the sync engine.
package store

import (
	"context"
	"errors"
)

// Logical keys for the persisted collections and singletons. The _v1 suffix
// versions the serialized shape, not the schema migration.
const (
	KeyTasks         = "tasks_v1"
	KeyEmployees     = "employees_v1"
	KeyAnnouncements = "announcements_v1"
	KeyAdminPassword = "admin_pwd"
	KeyAccessCode    = "access_code"
	KeyRemoteConfig  = "remote_config_v1"
	KeyLastEmployee  = "last_employee_v1"
)

// ErrCapacityExceeded is returned by Set when a write would push the store
// past its configured byte quota, or when SQLite reports the database full.
// Callers must treat it as "the value was not durably saved" and surface it,
// never swallow it.
var ErrCapacityExceeded = errors.New("store: capacity exceeded")

// Store is the key-value contract the repository and sync engine write
// through. Values are JSON-serialized on Set and unmarshaled on Get.
type Store interface {
	// Get unmarshals the value under key into out. It returns false with a
	// nil error when the key is absent.
	Get(ctx context.Context, key string, out any) (bool, error)

	// Set serializes v and durably stores it under key. It returns
	// ErrCapacityExceeded when the quota would be exceeded.
	Set(ctx context.Context, key string, v any) error

	// Remove deletes the value under key. Removing an absent key is not an
	// error.
	Remove(ctx context.Context, key string) error

	Close() error
}
