package typed

import (
	"context"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Collection is a handle to a named collection of T documents.
type Collection[T any] struct {
	CollectionName string
	Ref            docdb.CollectionRef

	db docdb.Client
}

// NewCollection binds a collection. No network call is made.
func NewCollection[T any](db docdb.Client, name string) *Collection[T] {
	return &Collection[T]{
		CollectionName: name,
		Ref:            db.Collection(name),
		db:             db,
	}
}

// Where starts a query with one condition.
func (c *Collection[T]) Where(field string, op docdb.Operator, value any) *Query[T] {
	return newQuery[T](c.db, c.CollectionName, []docdb.Condition{{Field: field, Op: op, Value: value}}, 0)
}

// Limit starts a query with no conditions capped at n documents.
func (c *Collection[T]) Limit(n int) *Query[T] {
	return newQuery[T](c.db, c.CollectionName, nil, n)
}

// Document returns a handle to a document in this collection. An empty
// docName generates a new id.
func (c *Collection[T]) Document(docName string) *Document[T] {
	return NewDocument[T](c.db, c.CollectionName, docName)
}

// Get reads every document in the collection.
func (c *Collection[T]) Get(ctx context.Context) (*QuerySnapshot[T], error) {
	snap, err := c.Ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	return newQuerySnapshot[T](snap), nil
}

// ListIDs returns the id of every document in the order the backend returned
// them.
func (c *Collection[T]) ListIDs(ctx context.Context) ([]string, error) {
	snap, err := c.Ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	return snap.IDs(), nil
}

// OnSnapshot calls fn with the collection contents now and after every change
// to any of its documents.
func (c *Collection[T]) OnSnapshot(ctx context.Context, fn func(*QuerySnapshot[T], error)) docdb.Unsubscribe {
	return c.Ref.OnSnapshot(ctx, func(snap *docdb.QuerySnapshot, err error) {
		fn(newQuerySnapshot[T](snap), err)
	})
}
