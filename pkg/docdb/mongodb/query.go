package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Query implements docdb.Query. Each condition is translated when it is
// added; a translation failure is reported by Get.
type Query struct {
	client     *Client
	collection *mongo.Collection
	filters    []bson.D
	limit      int64
	err        error
}

// Where returns a new query with one more filter.
func (q *Query) Where(field string, op docdb.Operator, value any) docdb.Query {
	next := q.clone()
	if next.err != nil {
		return next
	}
	f, err := toFilter(field, op, value)
	if err != nil {
		next.err = err
		return next
	}
	next.filters = append(next.filters, f)
	return next
}

// Limit returns a new query returning at most n documents.
func (q *Query) Limit(n int) docdb.Query {
	next := q.clone()
	if n < 0 && next.err == nil {
		next.err = fmt.Errorf("%w: negative limit %d", docdb.ErrInvalidArgument, n)
	}
	next.limit = int64(n)
	return next
}

// Filter returns the filter document the query sends to the server.
func (q *Query) Filter() bson.D {
	return combine(q.filters)
}

// Get executes the query once.
func (q *Query) Get(ctx context.Context) (*docdb.QuerySnapshot, error) {
	if q.err != nil {
		return nil, q.err
	}

	findOpts := options.Find()
	if q.limit > 0 {
		findOpts.SetLimit(q.limit)
	}

	cursor, err := q.collection.Find(ctx, q.Filter(), findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	snap := &docdb.QuerySnapshot{}
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		doc, err := toDocumentSnapshot(q.collection.Name(), raw)
		if err != nil {
			return nil, err
		}
		snap.Docs = append(snap.Docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	snap.ReadTime = now()
	return snap, nil
}

// OnSnapshot delivers the query results now and again after every change to
// the collection.
func (q *Query) OnSnapshot(ctx context.Context, fn func(*docdb.QuerySnapshot, error)) docdb.Unsubscribe {
	emit := func(ctx context.Context) error {
		snap, err := q.Get(ctx)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(snap, nil)
		return nil
	}
	return q.client.watch(ctx, q.collection, mongo.Pipeline{}, q.collection.Name(), emit, func(err error) { fn(nil, err) })
}

func (q *Query) clone() *Query {
	filters := make([]bson.D, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	return &Query{
		client:     q.client,
		collection: q.collection,
		filters:    filters,
		limit:      q.limit,
		err:        q.err,
	}
}

// watch opens a change stream, emits the current state, then emits again
// after every change event until the subscription is cancelled.
func (c *Client) watch(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, target string, emit func(context.Context) error, onErr func(error)) docdb.Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	logger := c.logger.With().Str("target", target).Logger()

	fail := func(err error) {
		if ctx.Err() != nil {
			logger.Debug().Msg("mongodb change stream stopped")
			return
		}
		logger.Warn().Err(err).Msg("mongodb change stream failed")
		onErr(err)
	}

	go func() {
		stream, err := coll.Watch(ctx, pipeline)
		if err != nil {
			fail(fmt.Errorf("failed to open change stream: %w", err))
			return
		}
		defer stream.Close(context.Background())
		logger.Debug().Msg("mongodb change stream started")

		if err := emit(ctx); err != nil {
			fail(err)
			return
		}
		for stream.Next(ctx) {
			if err := emit(ctx); err != nil {
				fail(err)
				return
			}
		}
		if err := stream.Err(); err != nil {
			fail(err)
			return
		}
		logger.Debug().Msg("mongodb change stream stopped")
	}()

	return func() {
		cancel()
	}
}

// CollectionRef implements docdb.CollectionRef.
type CollectionRef struct {
	*Query
}

// ID returns the collection name.
func (r *CollectionRef) ID() string {
	return r.collection.Name()
}

// Doc returns a reference to the document with the given id.
func (r *CollectionRef) Doc(id string) docdb.DocumentRef {
	return &DocumentRef{client: r.client, collection: r.collection, id: id}
}

// NewDoc returns a reference with a new ObjectID-derived id.
func (r *CollectionRef) NewDoc() docdb.DocumentRef {
	return r.Doc(primitive.NewObjectID().Hex())
}
