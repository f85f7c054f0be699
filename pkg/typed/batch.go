package typed

import (
	"context"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Batch stages writes against several documents and commits them atomically.
// A Batch is single-use.
type Batch struct {
	db    docdb.Client
	Write docdb.WriteBatch
}

// NewBatch opens a native write batch.
func NewBatch(db docdb.Client) *Batch {
	return &Batch{db: db, Write: db.Batch()}
}

// BatchSet stages a full overwrite of doc.
func BatchSet[T any](b *Batch, doc *Document[T], data T) docdb.WriteBatch {
	return b.Write.Set(doc.Ref, data)
}

// BatchUpdate stages a field merge on doc.
func BatchUpdate[T any](b *Batch, doc *Document[T], fields map[string]any) docdb.WriteBatch {
	return b.Write.Update(doc.Ref, fields)
}

// BatchDelete stages the removal of doc.
func BatchDelete[T any](b *Batch, doc *Document[T]) docdb.WriteBatch {
	return b.Write.Delete(doc.Ref)
}

// Commit applies every staged write, or none of them.
func (b *Batch) Commit(ctx context.Context) ([]*docdb.WriteResult, error) {
	return b.Write.Commit(ctx)
}
