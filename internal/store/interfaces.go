package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable indicates the store is unconfigured or unreachable.
// Callers surface it as a "feature not configured" condition, distinct
// from a generic failure.
var ErrUnavailable = errors.New("store unavailable")

// ErrPermissionDenied indicates the store rejected the operation. Callers
// surface it as a "configure access rules" condition.
var ErrPermissionDenied = errors.New("store permission denied")

// Store is a hierarchical key-path document store with change
// notification. Paths are slash-separated segments ("rooms/r1/chat").
// These six primitives are everything the room manager and profile layer
// depend on.
type Store interface {
	// Get reads the value at path once. A missing path yields (nil, nil).
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Set writes value at path, replacing whatever was there. A nil value
	// removes the path.
	Set(ctx context.Context, path string, value any) error

	// Update applies a partial multi-path update: every path in values is
	// set (or removed, for nil values) as one change event. Sibling paths
	// not named are untouched.
	Update(ctx context.Context, values map[string]any) error

	// Delete removes the value at path and everything beneath it.
	Delete(ctx context.Context, path string) error

	// Push appends value under a freshly generated child key of path and
	// returns the key. Keys generated in sequence sort lexicographically
	// in generation order, even within the same millisecond.
	Push(ctx context.Context, path string, value any) (string, error)

	// Subscribe registers fn for the value at path. fn is invoked once
	// with the current snapshot on registration, then once per change
	// event affecting path; the snapshot is nil when the path does not
	// exist. The returned function releases the subscription.
	Subscribe(path string, fn func(json.RawMessage)) (func(), error)
}
