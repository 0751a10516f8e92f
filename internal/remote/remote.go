// Package remote talks to the shared remote document store: a hosted
// JSON-document service holding one whole document per team. The protocol
// has exactly three operations (create, fetch, replace) and no field-level
// update; whoever replaces last wins in full.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/crewcheck/internal/model"
)

// ErrNotFound indicates the remote document does not exist (deleted store or
// wrong identifier).
var ErrNotFound = errors.New("remote: document not found")

// AuthError indicates the credential was rejected by the remote store.
// Unlike network failures it is not worth retrying on the next poll tick;
// the caller should stop and ask for a new credential.
type AuthError struct {
	Op      string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Op, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Client is the contract for the remote document store. Every operation
// distinguishes three outcomes: success, a recoverable network failure
// (plain error), or a credential failure (*AuthError).
type Client interface {
	// Create provisions a new remote document seeded with doc and returns
	// the config capturing the new document identifier, the credential,
	// and the label used.
	Create(ctx context.Context, apiKey string, doc model.SystemData, name string) (*model.RemoteConfig, error)

	// Fetch retrieves the full current document.
	Fetch(ctx context.Context, cfg model.RemoteConfig) (*model.SystemData, error)

	// Replace overwrites the full document. There is no partial update and
	// no concurrency token; the store applies whole-document last-writer-wins.
	Replace(ctx context.Context, cfg model.RemoteConfig, doc model.SystemData) error
}
