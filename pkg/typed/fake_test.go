package typed_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// recordingClient logs every native builder call made through it.
type recordingClient struct {
	mu    sync.Mutex
	calls []string
	snap  *docdb.QuerySnapshot
}

func (c *recordingClient) record(call string) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

func (c *recordingClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *recordingClient) Collection(name string) docdb.CollectionRef {
	c.record("collection " + name)
	return &recordingQuery{client: c, collection: name}
}

func (c *recordingClient) Batch() docdb.WriteBatch     { return nil }
func (c *recordingClient) Ping(context.Context) error  { return nil }
func (c *recordingClient) Close(context.Context) error { return nil }

type recordingQuery struct {
	client     *recordingClient
	collection string
}

func (q *recordingQuery) Where(field string, op docdb.Operator, value any) docdb.Query {
	q.client.record(fmt.Sprintf("where %s %s %v", field, op, value))
	return q
}

func (q *recordingQuery) Limit(n int) docdb.Query {
	q.client.record(fmt.Sprintf("limit %d", n))
	return q
}

func (q *recordingQuery) Get(context.Context) (*docdb.QuerySnapshot, error) {
	q.client.record("get")
	if q.client.snap == nil {
		return &docdb.QuerySnapshot{}, nil
	}
	return q.client.snap, nil
}

func (q *recordingQuery) OnSnapshot(context.Context, func(*docdb.QuerySnapshot, error)) docdb.Unsubscribe {
	return func() {}
}

func (q *recordingQuery) ID() string                   { return q.collection }
func (q *recordingQuery) Doc(string) docdb.DocumentRef { return nil }
func (q *recordingQuery) NewDoc() docdb.DocumentRef    { return nil }
