package memory

import (
	"context"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// DocumentRef implements docdb.DocumentRef.
type DocumentRef struct {
	client     *Client
	collection string
	id         string
}

// ID returns the document id.
func (r *DocumentRef) ID() string {
	return r.id
}

// CollectionID returns the parent collection name.
func (r *DocumentRef) CollectionID() string {
	return r.collection
}

// Set overwrites the document.
func (r *DocumentRef) Set(ctx context.Context, data any) (*docdb.WriteResult, error) {
	w, err := r.write(WriteSet, data)
	if err != nil {
		return nil, err
	}
	return r.commitOne(ctx, staged{write: w})
}

// Update merges fields into the existing document.
func (r *DocumentRef) Update(ctx context.Context, fields map[string]any, preconds ...docdb.Precondition) (*docdb.WriteResult, error) {
	w, err := r.write(WriteUpdate, fields)
	if err != nil {
		return nil, err
	}
	return r.commitOne(ctx, staged{write: w, preconds: preconds})
}

// Delete removes the document.
func (r *DocumentRef) Delete(ctx context.Context) (*docdb.WriteResult, error) {
	return r.commitOne(ctx, staged{write: Write{Kind: WriteDelete, Collection: r.collection, ID: r.id}})
}

// Get reads the document once.
func (r *DocumentRef) Get(ctx context.Context) (*docdb.DocumentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := r.client
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, docdb.ErrClosed
	}
	return c.snapshotLocked(r.collection, r.id, c.now()), nil
}

// OnSnapshot delivers the document state now and after every change to it.
func (r *DocumentRef) OnSnapshot(ctx context.Context, fn func(*docdb.DocumentSnapshot, error)) docdb.Unsubscribe {
	s := newSubscription(r.collection, r.id, nil)
	s.onDoc = fn
	return r.client.subscribe(ctx, s)
}

func (r *DocumentRef) write(kind WriteKind, data any) (Write, error) {
	body, err := normalize(data)
	if err != nil {
		return Write{}, err
	}
	return Write{Kind: kind, Collection: r.collection, ID: r.id, Data: body}, nil
}

func (r *DocumentRef) commitOne(ctx context.Context, s staged) (*docdb.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results, err := r.client.commit([]staged{s})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}
