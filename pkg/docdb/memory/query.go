package memory

import (
	"context"
	"fmt"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

type condition struct {
	docdb.Condition
	value any
	err   error
}

// Query implements docdb.Query. Every Where or Limit call returns a copy.
type Query struct {
	client     *Client
	collection string
	conditions []condition
	limit      int
}

// Where returns a new query with one more condition.
func (q *Query) Where(field string, op docdb.Operator, value any) docdb.Query {
	cond := condition{Condition: docdb.Condition{Field: field, Op: op, Value: value}}
	cond.value, cond.err = normalizeValue(value)

	next := q.clone()
	next.conditions = append(next.conditions, cond)
	return next
}

// Limit returns a new query capped at n results.
func (q *Query) Limit(n int) docdb.Query {
	next := q.clone()
	next.limit = n
	return next
}

// Conditions returns the conditions folded into this query, in order.
func (q *Query) Conditions() []docdb.Condition {
	out := make([]docdb.Condition, 0, len(q.conditions))
	for _, c := range q.conditions {
		out = append(out, c.Condition)
	}
	return out
}

// LimitCount returns the row cap, or 0 when none is set.
func (q *Query) LimitCount() int {
	return q.limit
}

// Get executes the query once.
func (q *Query) Get(ctx context.Context) (*docdb.QuerySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := q.client
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, docdb.ErrClosed
	}
	return c.runLocked(q, c.now())
}

// OnSnapshot delivers the query results now and after every change to the
// collection.
func (q *Query) OnSnapshot(ctx context.Context, fn func(*docdb.QuerySnapshot, error)) docdb.Unsubscribe {
	s := newSubscription(q.collection, "", q)
	s.onQuery = fn
	return q.client.subscribe(ctx, s)
}

func (q *Query) clone() *Query {
	conds := make([]condition, len(q.conditions), len(q.conditions)+1)
	copy(conds, q.conditions)
	return &Query{
		client:     q.client,
		collection: q.collection,
		conditions: conds,
		limit:      q.limit,
	}
}

func (q *Query) validate() error {
	for _, c := range q.conditions {
		if c.err != nil {
			return c.err
		}
		if !c.Op.Valid() {
			return fmt.Errorf("%w: unknown operator %q", docdb.ErrInvalidArgument, c.Op)
		}
		switch c.Op {
		case docdb.OpIn, docdb.OpNotIn, docdb.OpArrayContainsAny:
			if _, ok := c.value.([]any); !ok {
				return fmt.Errorf("%w: operator %q needs a list value", docdb.ErrInvalidArgument, c.Op)
			}
		}
	}
	if q.limit < 0 {
		return fmt.Errorf("%w: negative limit %d", docdb.ErrInvalidArgument, q.limit)
	}
	return nil
}

func (q *Query) matches(data map[string]any) bool {
	for _, c := range q.conditions {
		if !c.matches(data) {
			return false
		}
	}
	return true
}

func (c condition) matches(data map[string]any) bool {
	actual, ok := getPath(data, c.Field)
	if !ok {
		return false
	}

	switch c.Op {
	case docdb.OpEqual:
		return equal(actual, c.value)
	case docdb.OpNotEqual:
		return actual != nil && !equal(actual, c.value)
	case docdb.OpLess, docdb.OpLessEqual, docdb.OpGreater, docdb.OpGreaterEqual:
		cmp, ok := compare(actual, c.value)
		if !ok {
			return false
		}
		switch c.Op {
		case docdb.OpLess:
			return cmp < 0
		case docdb.OpLessEqual:
			return cmp <= 0
		case docdb.OpGreater:
			return cmp > 0
		}
		return cmp >= 0
	case docdb.OpArrayContains:
		list, ok := actual.([]any)
		return ok && containsValue(list, c.value)
	case docdb.OpArrayContainsAny:
		list, ok := actual.([]any)
		if !ok {
			return false
		}
		for _, want := range c.value.([]any) {
			if containsValue(list, want) {
				return true
			}
		}
		return false
	case docdb.OpIn:
		return containsValue(c.value.([]any), actual)
	case docdb.OpNotIn:
		return actual != nil && !containsValue(c.value.([]any), actual)
	}
	return false
}

// CollectionRef implements docdb.CollectionRef.
type CollectionRef struct {
	*Query
}

// ID returns the collection name.
func (r *CollectionRef) ID() string {
	return r.collection
}

// Doc returns a reference to the document with the given id.
func (r *CollectionRef) Doc(id string) docdb.DocumentRef {
	return &DocumentRef{client: r.client, collection: r.collection, id: id}
}

// NewDoc returns a reference with a generated id.
func (r *CollectionRef) NewDoc() docdb.DocumentRef {
	return r.Doc(r.client.newID())
}
