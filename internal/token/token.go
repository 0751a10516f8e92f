// Package token encodes payloads into compact text tokens safe for URL
// fragments, clipboards, and chat messages. Encoding is JSON wrapped in
// URL-safe base64, a transport convenience with no cryptographic property.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nhle/crewcheck/internal/model"
)

// ErrMalformed is returned by Decode for any input that is not a valid
// token, so callers can fall back to alternate parses (for example treating
// the input as raw JSON).
var ErrMalformed = errors.New("token: malformed input")

// Encode serializes v and encodes it into a URL-safe text token.
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding token payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode is the inverse of Encode. Any malformed input, whether bad base64
// or bad JSON, yields ErrMalformed.
func Decode(tok string, out any) error {
	data, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// DecodeRemoteConfig decodes an invite token. It returns nil on any
// malformed input or when the payload is not a usable config.
func DecodeRemoteConfig(tok string) *model.RemoteConfig {
	var cfg model.RemoteConfig
	if err := Decode(tok, &cfg); err != nil {
		return nil
	}
	if cfg.StoreID == "" || cfg.APIKey == "" {
		return nil
	}
	return &cfg
}

// DecodeAssignment decodes an assignment code. It returns nil on malformed
// input or when the payload is not tagged as an assignment.
func DecodeAssignment(tok string) *model.AssignmentData {
	var data model.AssignmentData
	if err := Decode(tok, &data); err != nil {
		return nil
	}
	if data.Type != model.AssignmentType {
		return nil
	}
	return &data
}

// DecodeSystemData decodes a pasted token into a full snapshot. It returns
// nil on malformed input or when the payload carries no recognizable
// collections.
func DecodeSystemData(tok string) *model.SystemData {
	var data model.SystemData
	if err := Decode(tok, &data); err != nil {
		return nil
	}
	if data.Tasks == nil && data.Employees == nil && data.Announcements == nil {
		return nil
	}
	return &data
}
