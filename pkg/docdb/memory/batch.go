package memory

import (
	"context"
	"fmt"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// WriteBatch implements docdb.WriteBatch. Writes are validated together and
// applied under a single lock, so either all of them land or none do.
type WriteBatch struct {
	client *Client
	writes []staged
	err    error
}

// Set stages a full overwrite.
func (b *WriteBatch) Set(ref docdb.DocumentRef, data any) docdb.WriteBatch {
	b.stage(ref, WriteSet, data)
	return b
}

// Update stages a field merge.
func (b *WriteBatch) Update(ref docdb.DocumentRef, fields map[string]any) docdb.WriteBatch {
	b.stage(ref, WriteUpdate, fields)
	return b
}

// Delete stages a removal.
func (b *WriteBatch) Delete(ref docdb.DocumentRef) docdb.WriteBatch {
	b.stage(ref, WriteDelete, nil)
	return b
}

// Commit applies every staged write atomically.
func (b *WriteBatch) Commit(ctx context.Context) ([]*docdb.WriteResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(b.writes) == 0 {
		return []*docdb.WriteResult{}, nil
	}
	return b.client.commit(b.writes)
}

func (b *WriteBatch) stage(ref docdb.DocumentRef, kind WriteKind, data any) {
	if b.err != nil {
		return
	}
	r, ok := ref.(*DocumentRef)
	if !ok || r.client != b.client {
		b.err = fmt.Errorf("%w: %s/%s", docdb.ErrForeignRef, ref.CollectionID(), ref.ID())
		return
	}
	w := Write{Kind: kind, Collection: r.collection, ID: r.id}
	if kind != WriteDelete {
		body, err := normalize(data)
		if err != nil {
			b.err = err
			return
		}
		w.Data = body
	}
	b.writes = append(b.writes, staged{write: w})
}
