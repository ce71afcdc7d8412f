// Package docstore is the collection-oriented document store that holds leads and todos.
//
// Two implementations exist: FirestoreStore, backed by Cloud Firestore, and MemoryStore,
// used for local development and tests. Both deliver live query results as whole
// snapshots and support atomic multi-document batches.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document id does not exist in its collection.
var ErrNotFound = errors.New("docstore: document not found")

// Document is one stored record.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Snapshot is the full result set of a live query at one point in time.
type Snapshot struct {
	Documents []Document
	ReadAt    time.Time
}

// Filter restricts a query to documents whose field equals Value.
type Filter struct {
	Field string
	Value interface{}
}

// Eq builds an equality filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// Update sets a single top-level field. Value may be one of the sentinels below.
type Update struct {
	Field string
	Value interface{}
}

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's commit time when written.
var ServerTimestamp = serverTimestamp{}

type arrayUnion struct {
	values []interface{}
}

// ArrayUnion appends values to an array field, skipping elements already present.
func ArrayUnion(values ...interface{}) interface{} {
	return arrayUnion{values: values}
}

// Store is the contract the lead and todo repositories depend on.
type Store interface {
	// Create adds a document with a store-assigned id.
	Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error)

	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Update merges the given fields into an existing document.
	Update(ctx context.Context, collection, id string, updates []Update) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Query returns the documents matching every filter.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)

	// Subscribe opens a live query. The first snapshot is the current result set.
	Subscribe(ctx context.Context, collection string, filters ...Filter) (*Subscription, error)

	// Batch starts an all-or-nothing group of updates.
	Batch() Batch

	Close() error
}

// Batch collects updates that commit atomically.
type Batch interface {
	Update(collection, id string, updates []Update)
	Commit(ctx context.Context) error
}
