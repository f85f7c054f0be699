package typed

import (
	"context"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Query is an immutable filter over a collection. Where and Limit return a new
// Query; the receiver is never changed.
type Query[T any] struct {
	CollectionName string
	Ref            docdb.Query

	db         docdb.Client
	conditions []docdb.Condition
	limit      int
}

// newQuery folds every condition onto the raw collection reference, then
// applies the limit when one is set.
func newQuery[T any](db docdb.Client, collectionName string, conditions []docdb.Condition, limit int) *Query[T] {
	var ref docdb.Query = db.Collection(collectionName)
	for _, c := range conditions {
		ref = ref.Where(c.Field, c.Op, c.Value)
	}
	if limit != 0 {
		ref = ref.Limit(limit)
	}
	return &Query[T]{
		CollectionName: collectionName,
		Ref:            ref,
		db:             db,
		conditions:     conditions,
		limit:          limit,
	}
}

// Where returns a query with one more condition.
func (q *Query[T]) Where(field string, op docdb.Operator, value any) *Query[T] {
	next := make([]docdb.Condition, len(q.conditions), len(q.conditions)+1)
	copy(next, q.conditions)
	next = append(next, docdb.Condition{Field: field, Op: op, Value: value})
	return newQuery[T](q.db, q.CollectionName, next, q.limit)
}

// Limit returns a query capped at n documents, replacing any earlier limit.
func (q *Query[T]) Limit(n int) *Query[T] {
	return newQuery[T](q.db, q.CollectionName, q.Conditions(), n)
}

// Conditions returns a copy of the conditions in the order they were added.
func (q *Query[T]) Conditions() []docdb.Condition {
	out := make([]docdb.Condition, len(q.conditions))
	copy(out, q.conditions)
	return out
}

// LimitCount returns the limit, or 0 when none is set.
func (q *Query[T]) LimitCount() int {
	return q.limit
}

// Get runs the query once.
func (q *Query[T]) Get(ctx context.Context) (*QuerySnapshot[T], error) {
	snap, err := q.Ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	return newQuerySnapshot[T](snap), nil
}

// OnSnapshot calls fn with the query results now and after every change.
func (q *Query[T]) OnSnapshot(ctx context.Context, fn func(*QuerySnapshot[T], error)) docdb.Unsubscribe {
	return q.Ref.OnSnapshot(ctx, func(snap *docdb.QuerySnapshot, err error) {
		fn(newQuerySnapshot[T](snap), err)
	})
}
