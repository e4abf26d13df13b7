// Package store exposes the document store the reservation core runs on.
//
// Documents are loosely typed field maps; callers are expected to map them
// through a validated schema at the boundary. The store owns durability and
// propagation: a subscription is the single source of truth for what a
// collection currently looks like.
package store

import (
	"context"
	"errors"
)

// Fields is a partial or complete set of document fields.
type Fields map[string]any

// Snapshot is a complete view of one collection, keyed by document key.
// Every delivery carries the whole collection, never a delta.
type Snapshot map[string]Fields

var (
	// ErrNotFound is returned when the addressed document is absent.
	ErrNotFound = errors.New("store: document not found")

	// ErrPreconditionFailed is returned by UpdateIf when the document exists
	// but the guard fields no longer match.
	ErrPreconditionFailed = errors.New("store: precondition failed")
)

// DocumentStore is the boundary to the external document database.
type DocumentStore interface {
	// Get returns the document's fields, or ErrNotFound.
	Get(ctx context.Context, collection, key string) (Fields, error)

	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, key string, fields Fields) error

	// Update overwrites the given fields unconditionally. Concurrent updates
	// to the same document resolve last-writer-wins at the store; the caller
	// learns nothing about contention. Kept as the legacy write path.
	Update(ctx context.Context, collection, key string, fields Fields) error

	// UpdateIf overwrites the given fields only if the document currently
	// matches every guard field, evaluated atomically at the store. Returns
	// ErrPreconditionFailed when the guard does not hold.
	UpdateIf(ctx context.Context, collection, key string, guard, fields Fields) error

	// Subscribe opens a live subscription to the full collection. onSnapshot
	// receives one initial snapshot and then a complete snapshot after every
	// change to any document. onError is called once if the subscription
	// transport fails, after which no further snapshots are delivered; the
	// subscription does not auto-retry. The returned function unsubscribes.
	Subscribe(ctx context.Context, collection string, onSnapshot func(Snapshot), onError func(error)) (func(), error)
}
