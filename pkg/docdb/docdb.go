// Package docdb defines the document database capability interface.
//
// Every backing SDK (Firestore, MongoDB, the in-memory store) is exposed through
// one adapter implementing these interfaces. The typed wrappers in pkg/typed only
// ever talk to this package, so they behave the same on every backend. Adapters
// forward calls to their SDK and return its errors unchanged.
package docdb

import (
	"context"
)

// Unsubscribe stops delivery of future snapshots for a subscription.
// Calling it more than once is a no-op.
type Unsubscribe func()

// Client is a handle to one document database.
type Client interface {
	// Collection returns a reference to the named collection.
	// No network call is made.
	Collection(name string) CollectionRef

	// Batch opens a new write batch.
	Batch() WriteBatch

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}

// Query is an immutable native query. Where and Limit return a new Query and
// leave the receiver untouched.
type Query interface {
	// Where returns a new query with one more filter condition.
	Where(field string, op Operator, value any) Query

	// Limit returns a new query returning at most n documents.
	Limit(n int) Query

	// Get executes the query once.
	Get(ctx context.Context) (*QuerySnapshot, error)

	// OnSnapshot registers fn for live results. The first call carries the
	// current result set, later calls follow server-observed changes.
	OnSnapshot(ctx context.Context, fn func(*QuerySnapshot, error)) Unsubscribe
}

// CollectionRef is a reference to a named collection. As a Query it matches
// every document in the collection.
type CollectionRef interface {
	Query

	// ID returns the collection name.
	ID() string

	// Doc returns a reference to the document with the given id.
	Doc(id string) DocumentRef

	// NewDoc returns a reference to a document with a generated id.
	NewDoc() DocumentRef
}

// DocumentRef is a reference to one document.
type DocumentRef interface {
	// ID returns the document id.
	ID() string

	// CollectionID returns the name of the parent collection.
	CollectionID() string

	// Set overwrites the whole document, creating it if needed.
	Set(ctx context.Context, data any) (*WriteResult, error)

	// Update merges fields into an existing document. Field names may be
	// dot-separated paths.
	Update(ctx context.Context, fields map[string]any, preconds ...Precondition) (*WriteResult, error)

	// Get reads the document once. A missing document yields a snapshot whose
	// Exists field is false.
	Get(ctx context.Context) (*DocumentSnapshot, error)

	// Delete removes the document. Deleting a missing document succeeds.
	Delete(ctx context.Context) (*WriteResult, error)

	// OnSnapshot registers fn for live updates of this document.
	OnSnapshot(ctx context.Context, fn func(*DocumentSnapshot, error)) Unsubscribe
}

// WriteBatch stages writes that are committed atomically.
type WriteBatch interface {
	Set(ref DocumentRef, data any) WriteBatch
	Update(ref DocumentRef, fields map[string]any) WriteBatch
	Delete(ref DocumentRef) WriteBatch

	// Commit applies every staged write or none of them.
	Commit(ctx context.Context) ([]*WriteResult, error)
}
