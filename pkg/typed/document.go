// Package typed provides generic, type-safe wrappers over a docdb.Client.
//
// A Collection[T] hands out Document[T] and Query[T] values whose reads decode
// into T and whose writes accept T. Every call is forwarded to the underlying
// client and its errors are returned unchanged.
package typed

import (
	"context"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Document is a handle to one document in a collection.
type Document[T any] struct {
	CollectionName string
	DocName        string
	Ref            docdb.DocumentRef
}

// NewDocument binds a document by name. An empty docName asks the native
// collection for a generated id.
func NewDocument[T any](db docdb.Client, collectionName, docName string) *Document[T] {
	coll := db.Collection(collectionName)
	var ref docdb.DocumentRef
	if docName == "" {
		ref = coll.NewDoc()
	} else {
		ref = coll.Doc(docName)
	}
	return &Document[T]{
		CollectionName: collectionName,
		DocName:        ref.ID(),
		Ref:            ref,
	}
}

// Reference returns the native document reference.
func (d *Document[T]) Reference() docdb.DocumentRef {
	return d.Ref
}

// Set overwrites the whole document.
func (d *Document[T]) Set(ctx context.Context, data T) (*docdb.WriteResult, error) {
	return d.Ref.Set(ctx, data)
}

// Update merges fields into the document. Preconditions are checked by the
// backend.
func (d *Document[T]) Update(ctx context.Context, fields map[string]any, preconds ...docdb.Precondition) (*docdb.WriteResult, error) {
	return d.Ref.Update(ctx, fields, preconds...)
}

// Get reads the document once.
func (d *Document[T]) Get(ctx context.Context) (*Snapshot[T], error) {
	snap, err := d.Ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	return newSnapshot[T](snap), nil
}

// Delete removes the document. Deleting a missing document succeeds.
func (d *Document[T]) Delete(ctx context.Context) (*docdb.WriteResult, error) {
	return d.Ref.Delete(ctx)
}

// OnSnapshot calls fn with the current state and again after every change.
func (d *Document[T]) OnSnapshot(ctx context.Context, fn func(*Snapshot[T], error)) docdb.Unsubscribe {
	return d.Ref.OnSnapshot(ctx, func(snap *docdb.DocumentSnapshot, err error) {
		fn(newSnapshot[T](snap), err)
	})
}
