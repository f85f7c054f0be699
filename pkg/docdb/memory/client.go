// Package memory provides an in-process implementation of the docdb interfaces.
//
// Documents are normalized through encoding/json on write, so struct fields are
// named by their json tags and numbers read back as float64. The client is safe
// for concurrent use. It is intended for tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// WriteKind identifies a staged write.
type WriteKind string

const (
	WriteSet    WriteKind = "set"
	WriteUpdate WriteKind = "update"
	WriteDelete WriteKind = "delete"
)

// Write describes one write about to be applied. It is handed to the write
// hook before anything is stored.
type Write struct {
	Kind       WriteKind
	Collection string
	ID         string
	Data       map[string]any
}

// WriteHook inspects a pending write. A non-nil error rejects the write and,
// for batches, every other write in the same commit.
type WriteHook func(Write) error

// Option configures a Client.
type Option func(*Client)

// WithWriteHook installs a hook that can reject writes. The hook sees every
// staged write of a commit before any precondition is checked and may call
// back into the client.
func WithWriteHook(hook WriteHook) Option {
	return func(c *Client) {
		c.hook = hook
	}
}

// WithClock overrides the time source used for create and update times.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithIDGenerator overrides the generator used by NewDoc.
func WithIDGenerator(gen func() string) Option {
	return func(c *Client) {
		c.newID = gen
	}
}

// WithLogger sets the logger used for subscription lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

type record struct {
	data       map[string]any
	createTime time.Time
	updateTime time.Time
}

// Client implements docdb.Client in memory.
type Client struct {
	mu          sync.RWMutex
	collections map[string]map[string]*record
	subs        map[*subscription]struct{}
	closed      bool

	hook   WriteHook
	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

// NewClient creates an empty in-memory database.
func NewClient(opts ...Option) *Client {
	c := &Client{
		collections: make(map[string]map[string]*record),
		subs:        make(map[*subscription]struct{}),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       defaultID,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultID returns a 20 character id, the same length Firestore generates.
func defaultID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// Collection returns a reference to the named collection.
func (c *Client) Collection(name string) docdb.CollectionRef {
	return &CollectionRef{Query: &Query{client: c, collection: name}}
}

// Batch opens a new write batch.
func (c *Client) Batch() docdb.WriteBatch {
	return &WriteBatch{client: c}
}

// Ping reports ErrClosed once the client has been closed.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return docdb.ErrClosed
	}
	return nil
}

// Close stops every subscription and rejects later calls.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	subs := make([]*subscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.subs = make(map[*subscription]struct{})
	c.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
	return nil
}

// Len returns the number of documents stored in a collection.
func (c *Client) Len(collection string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.collections[collection])
}

// snapshotLocked builds a document snapshot. Callers hold c.mu.
func (c *Client) snapshotLocked(collection, id string, readTime time.Time) *docdb.DocumentSnapshot {
	rec, ok := c.collections[collection][id]
	if !ok {
		snap := docdb.NewDocumentSnapshot(collection, id, false, nil, nil)
		snap.ReadTime = readTime
		return snap
	}
	data := deepCopy(rec.data)
	snap := docdb.NewDocumentSnapshot(collection, id, true, data, decoder(data))
	snap.CreateTime = rec.createTime
	snap.UpdateTime = rec.updateTime
	snap.ReadTime = readTime
	return snap
}

// runLocked evaluates a query against the current state. Callers hold c.mu.
func (c *Client) runLocked(q *Query, readTime time.Time) (*docdb.QuerySnapshot, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	coll := c.collections[q.collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snap := &docdb.QuerySnapshot{ReadTime: readTime}
	for _, id := range ids {
		if !q.matches(coll[id].data) {
			continue
		}
		snap.Docs = append(snap.Docs, c.snapshotLocked(q.collection, id, readTime))
		if q.limit > 0 && len(snap.Docs) == q.limit {
			break
		}
	}
	return snap, nil
}

type docKey struct {
	collection string
	id         string
}

type staged struct {
	write    Write
	preconds []docdb.Precondition
}

// commit validates every write against the current state plus the writes
// staged before it, then applies all of them at once.
func (c *Client) commit(writes []staged) ([]*docdb.WriteResult, error) {
	// Hooks run unlocked so they may read through the client.
	if c.hook != nil {
		for _, s := range writes {
			if err := c.hook(s.write); err != nil {
				return nil, err
			}
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, docdb.ErrClosed
	}

	now := c.now()
	overlay := make(map[docKey]*record)
	order := make([]docKey, 0, len(writes))
	lookup := func(k docKey) (*record, bool) {
		if rec, ok := overlay[k]; ok {
			return rec, rec != nil
		}
		rec, ok := c.collections[k.collection][k.id]
		return rec, ok
	}

	for _, s := range writes {
		w := s.write
		k := docKey{collection: w.Collection, id: w.ID}
		current, exists := lookup(k)

		if err := checkPreconditions(w, current, exists, s.preconds); err != nil {
			c.mu.Unlock()
			return nil, err
		}

		var next *record
		switch w.Kind {
		case WriteSet:
			next = &record{data: w.Data, createTime: now, updateTime: now}
			if exists {
				next.createTime = current.createTime
			}
		case WriteUpdate:
			merged := deepCopy(current.data)
			if merged == nil {
				merged = make(map[string]any)
			}
			for path, v := range w.Data {
				setPath(merged, path, v)
			}
			next = &record{data: merged, createTime: current.createTime, updateTime: now}
		case WriteDelete:
			next = nil
		}

		if _, seen := overlay[k]; !seen {
			order = append(order, k)
		}
		overlay[k] = next
	}

	for _, k := range order {
		rec := overlay[k]
		if rec == nil {
			delete(c.collections[k.collection], k.id)
			continue
		}
		if c.collections[k.collection] == nil {
			c.collections[k.collection] = make(map[string]*record)
		}
		c.collections[k.collection][k.id] = rec
	}

	results := make([]*docdb.WriteResult, len(writes))
	for i := range writes {
		results[i] = &docdb.WriteResult{UpdateTime: now}
	}

	c.notifyLocked(order, now)
	c.mu.Unlock()
	return results, nil
}

func checkPreconditions(w Write, current *record, exists bool, preconds []docdb.Precondition) error {
	if w.Kind == WriteUpdate && !exists {
		return notFound(w.Collection, w.ID)
	}
	for _, p := range preconds {
		if p.Exists != nil && *p.Exists != exists {
			return preconditionFailed(w.Collection, w.ID, "existence")
		}
		if !p.LastUpdateTime.IsZero() {
			if !exists || !current.updateTime.Equal(p.LastUpdateTime) {
				return preconditionFailed(w.Collection, w.ID, "last update time")
			}
		}
	}
	return nil
}

// notifyLocked enqueues fresh snapshots for every subscription affected by
// the given keys. Callers hold c.mu.
func (c *Client) notifyLocked(keys []docKey, readTime time.Time) {
	for s := range c.subs {
		if !s.affectedBy(keys) {
			continue
		}
		if s.docID != "" {
			s.push(event{doc: c.snapshotLocked(s.collection, s.docID, readTime)})
			continue
		}
		snap, err := c.runLocked(s.query, readTime)
		s.push(event{query: snap, err: err})
	}
}

func (c *Client) subscribe(ctx context.Context, s *subscription) docdb.Unsubscribe {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		s.push(event{err: docdb.ErrClosed})
		s.start(ctx)
		return s.stop
	}

	now := c.now()
	if s.docID != "" {
		s.push(event{doc: c.snapshotLocked(s.collection, s.docID, now)})
	} else {
		snap, err := c.runLocked(s.query, now)
		s.push(event{query: snap, err: err})
	}
	s.onStop = func() {
		c.mu.Lock()
		delete(c.subs, s)
		c.mu.Unlock()
		c.logger.Debug().
			Str("collection", s.collection).
			Str("document", s.docID).
			Msg("subscription stopped")
	}
	c.subs[s] = struct{}{}
	c.mu.Unlock()

	c.logger.Debug().
		Str("collection", s.collection).
		Str("document", s.docID).
		Msg("subscription started")

	s.start(ctx)
	return s.stop
}
