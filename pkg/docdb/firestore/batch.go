package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// WriteBatch implements docdb.WriteBatch over the native atomic batch.
type WriteBatch struct {
	client *Client
	batch  *firestore.WriteBatch
	err    error
}

// Set stages a full overwrite.
func (b *WriteBatch) Set(ref docdb.DocumentRef, data any) docdb.WriteBatch {
	if native := b.native(ref); native != nil {
		b.batch.Set(native, data)
	}
	return b
}

// Update stages a field merge.
func (b *WriteBatch) Update(ref docdb.DocumentRef, fields map[string]any) docdb.WriteBatch {
	if native := b.native(ref); native != nil {
		b.batch.Update(native, toUpdates(fields))
	}
	return b
}

// Delete stages a removal.
func (b *WriteBatch) Delete(ref docdb.DocumentRef) docdb.WriteBatch {
	if native := b.native(ref); native != nil {
		b.batch.Delete(native)
	}
	return b
}

// Commit applies every staged write atomically.
func (b *WriteBatch) Commit(ctx context.Context) ([]*docdb.WriteResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	results, err := b.batch.Commit(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*docdb.WriteResult, 0, len(results))
	for _, res := range results {
		out = append(out, toWriteResult(res))
	}
	return out, nil
}

func (b *WriteBatch) native(ref docdb.DocumentRef) *firestore.DocumentRef {
	if b.err != nil {
		return nil
	}
	r, ok := ref.(*DocumentRef)
	if !ok || r.client != b.client {
		b.err = fmt.Errorf("%w: %s/%s", docdb.ErrForeignRef, ref.CollectionID(), ref.ID())
		return nil
	}
	return r.ref
}
