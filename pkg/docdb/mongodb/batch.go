package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

type op func(ctx mongo.SessionContext) error

// WriteBatch implements docdb.WriteBatch with a multi-document transaction.
type WriteBatch struct {
	client *Client
	ops    []op
	err    error
}

// Set stages a full overwrite.
func (b *WriteBatch) Set(ref docdb.DocumentRef, data any) docdb.WriteBatch {
	r := b.ref(ref)
	if r == nil {
		return b
	}
	doc, err := toDocument(r.id, data)
	if err != nil {
		b.err = err
		return b
	}
	b.ops = append(b.ops, func(ctx mongo.SessionContext) error {
		return replace(ctx, r.collection, r.id, doc)
	})
	return b
}

// Update stages a field merge. The transaction aborts if the document is
// missing.
func (b *WriteBatch) Update(ref docdb.DocumentRef, fields map[string]any) docdb.WriteBatch {
	r := b.ref(ref)
	if r == nil {
		return b
	}
	update, err := toSet(fields)
	if err != nil {
		b.err = err
		return b
	}
	b.ops = append(b.ops, func(ctx mongo.SessionContext) error {
		result, err := r.collection.UpdateOne(ctx, idFilter(r.id), update)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("%w: %s/%s", docdb.ErrNotFound, r.CollectionID(), r.id)
		}
		return nil
	})
	return b
}

// Delete stages a removal.
func (b *WriteBatch) Delete(ref docdb.DocumentRef) docdb.WriteBatch {
	r := b.ref(ref)
	if r == nil {
		return b
	}
	b.ops = append(b.ops, func(ctx mongo.SessionContext) error {
		_, err := r.collection.DeleteOne(ctx, idFilter(r.id))
		return err
	})
	return b
}

// Commit runs every staged write inside one transaction.
func (b *WriteBatch) Commit(ctx context.Context) ([]*docdb.WriteResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.ops) == 0 {
		return []*docdb.WriteResult{}, nil
	}

	session, err := b.client.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, run := range b.ops {
			if err := run(sc); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	results := make([]*docdb.WriteResult, len(b.ops))
	for i := range results {
		results[i] = &docdb.WriteResult{}
	}
	return results, nil
}

func (b *WriteBatch) ref(ref docdb.DocumentRef) *DocumentRef {
	if b.err != nil {
		return nil
	}
	r, ok := ref.(*DocumentRef)
	if !ok || r.client != b.client {
		b.err = fmt.Errorf("%w: %s/%s", docdb.ErrForeignRef, ref.CollectionID(), ref.ID())
		return nil
	}
	return r
}
