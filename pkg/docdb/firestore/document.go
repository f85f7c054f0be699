package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// DocumentRef implements docdb.DocumentRef.
type DocumentRef struct {
	client *Client
	ref    *firestore.DocumentRef
}

// ID returns the document id.
func (r *DocumentRef) ID() string {
	return r.ref.ID
}

// CollectionID returns the parent collection name.
func (r *DocumentRef) CollectionID() string {
	return r.ref.Parent.ID
}

// Native returns the underlying Firestore reference.
func (r *DocumentRef) Native() *firestore.DocumentRef {
	return r.ref
}

// Set overwrites the document.
func (r *DocumentRef) Set(ctx context.Context, data any) (*docdb.WriteResult, error) {
	res, err := r.ref.Set(ctx, data)
	if err != nil {
		return nil, err
	}
	return toWriteResult(res), nil
}

// Update merges fields into the document. Firestore updates always require the
// document to exist, so only Exists(true) and LastUpdateTime are accepted.
func (r *DocumentRef) Update(ctx context.Context, fields map[string]any, preconds ...docdb.Precondition) (*docdb.WriteResult, error) {
	native, err := toPreconditions(preconds)
	if err != nil {
		return nil, err
	}
	res, err := r.ref.Update(ctx, toUpdates(fields), native...)
	if err != nil {
		return nil, err
	}
	return toWriteResult(res), nil
}

// Get reads the document once. A missing document yields a snapshot whose
// Exists is false instead of a NotFound error.
func (r *DocumentRef) Get(ctx context.Context) (*docdb.DocumentSnapshot, error) {
	snap, err := r.ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound && snap != nil {
			return toDocumentSnapshot(r.ref, snap), nil
		}
		return nil, err
	}
	return toDocumentSnapshot(r.ref, snap), nil
}

// Delete removes the document. Deleting a missing document succeeds.
func (r *DocumentRef) Delete(ctx context.Context) (*docdb.WriteResult, error) {
	res, err := r.ref.Delete(ctx)
	if err != nil {
		return nil, err
	}
	return toWriteResult(res), nil
}

// OnSnapshot listens to the document.
func (r *DocumentRef) OnSnapshot(ctx context.Context, fn func(*docdb.DocumentSnapshot, error)) docdb.Unsubscribe {
	open := func(ctx context.Context) (func() error, func()) {
		it := r.ref.Snapshots(ctx)
		next := func() error {
			snap, err := it.Next()
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(toDocumentSnapshot(r.ref, snap), nil)
			return nil
		}
		return next, it.Stop
	}
	target := fmt.Sprintf("%s/%s", r.CollectionID(), r.ID())
	return r.client.listen(ctx, target, open, func(err error) { fn(nil, err) })
}
