package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Query implements docdb.Query over a native firestore.Query. The native
// query is itself immutable, so Where and Limit only rewrap its result.
type Query struct {
	client *Client
	query  firestore.Query
}

// Where returns a new query with one more filter.
func (q *Query) Where(field string, op docdb.Operator, value any) docdb.Query {
	return &Query{client: q.client, query: q.query.Where(field, string(op), value)}
}

// Limit returns a new query returning at most n documents.
func (q *Query) Limit(n int) docdb.Query {
	return &Query{client: q.client, query: q.query.Limit(n)}
}

// Native returns the underlying Firestore query.
func (q *Query) Native() firestore.Query {
	return q.query
}

// Get executes the query once.
func (q *Query) Get(ctx context.Context) (*docdb.QuerySnapshot, error) {
	docs, err := q.query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return toQuerySnapshot(docs), nil
}

// OnSnapshot listens to the query's result set.
func (q *Query) OnSnapshot(ctx context.Context, fn func(*docdb.QuerySnapshot, error)) docdb.Unsubscribe {
	open := func(ctx context.Context) (func() error, func()) {
		it := q.query.Snapshots(ctx)
		next := func() error {
			qs, err := it.Next()
			if err != nil {
				return err
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			snap := toQuerySnapshot(docs)
			snap.ReadTime = qs.ReadTime
			fn(snap, nil)
			return nil
		}
		return next, it.Stop
	}
	return q.client.listen(ctx, "query", open, func(err error) { fn(nil, err) })
}

// listen drives a snapshot iterator from one goroutine until it fails or the
// subscription is cancelled. Stop runs on the same goroutine after the last
// Next returns.
func (c *Client) listen(ctx context.Context, target string, open func(context.Context) (func() error, func()), onErr func(error)) docdb.Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	next, stop := open(ctx)
	c.logger.Debug().Str("target", target).Msg("firestore listener started")

	go func() {
		defer stop()
		for {
			err := next()
			if err == nil {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, iterator.Done) {
				c.logger.Debug().Str("target", target).Msg("firestore listener stopped")
				return
			}
			c.logger.Warn().Err(err).Str("target", target).Msg("firestore listener failed")
			onErr(err)
			return
		}
	}()

	return func() {
		cancel()
	}
}

// CollectionRef implements docdb.CollectionRef.
type CollectionRef struct {
	*Query
	ref *firestore.CollectionRef
}

// ID returns the collection name.
func (r *CollectionRef) ID() string {
	return r.ref.ID
}

// Doc returns a reference to the document with the given id.
func (r *CollectionRef) Doc(id string) docdb.DocumentRef {
	return &DocumentRef{client: r.client, ref: r.ref.Doc(id)}
}

// NewDoc returns a reference with a Firestore-generated id.
func (r *CollectionRef) NewDoc() docdb.DocumentRef {
	return &DocumentRef{client: r.client, ref: r.ref.NewDoc()}
}
