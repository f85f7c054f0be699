package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// DocumentRef implements docdb.DocumentRef.
type DocumentRef struct {
	client     *Client
	collection *mongo.Collection
	id         string
}

// ID returns the document id.
func (r *DocumentRef) ID() string {
	return r.id
}

// CollectionID returns the parent collection name.
func (r *DocumentRef) CollectionID() string {
	return r.collection.Name()
}

// Set overwrites the document, creating it if needed.
func (r *DocumentRef) Set(ctx context.Context, data any) (*docdb.WriteResult, error) {
	doc, err := toDocument(r.id, data)
	if err != nil {
		return nil, err
	}
	if err := replace(ctx, r.collection, r.id, doc); err != nil {
		return nil, fmt.Errorf("failed to set document: %w", err)
	}
	return &docdb.WriteResult{}, nil
}

// replace overwrites the document stored under id. A document already keyed
// by the ObjectID form of id keeps that key; anything else is upserted under
// the string id. doc must carry _id as its first element, as toDocument
// builds it.
func replace(ctx context.Context, coll *mongo.Collection, id string, doc bson.D) error {
	if oid, ok := objectID(id); ok {
		result, err := coll.ReplaceOne(ctx, bson.D{{Key: idField, Value: oid}}, doc[1:])
		if err != nil {
			return err
		}
		if result.MatchedCount > 0 {
			return nil
		}
	}
	_, err := coll.ReplaceOne(ctx, bson.D{{Key: idField, Value: id}}, doc, options.Replace().SetUpsert(true))
	return err
}

// Update merges fields into an existing document.
func (r *DocumentRef) Update(ctx context.Context, fields map[string]any, preconds ...docdb.Precondition) (*docdb.WriteResult, error) {
	if err := checkPreconditions(preconds); err != nil {
		return nil, err
	}
	update, err := toSet(fields)
	if err != nil {
		return nil, err
	}
	result, err := r.collection.UpdateOne(ctx, idFilter(r.id), update)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s/%s", docdb.ErrNotFound, r.CollectionID(), r.id)
	}
	return &docdb.WriteResult{}, nil
}

// Get reads the document once.
func (r *DocumentRef) Get(ctx context.Context) (*docdb.DocumentSnapshot, error) {
	var raw bson.Raw
	err := r.collection.FindOne(ctx, idFilter(r.id)).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return missingSnapshot(r.CollectionID(), r.id), nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return toDocumentSnapshot(r.CollectionID(), raw)
}

// Delete removes the document. Deleting a missing document succeeds.
func (r *DocumentRef) Delete(ctx context.Context) (*docdb.WriteResult, error) {
	if _, err := r.collection.DeleteOne(ctx, idFilter(r.id)); err != nil {
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}
	return &docdb.WriteResult{}, nil
}

// OnSnapshot delivers the document state now and after every change to it.
func (r *DocumentRef) OnSnapshot(ctx context.Context, fn func(*docdb.DocumentSnapshot, error)) docdb.Unsubscribe {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: idMatch("documentKey._id", r.id)}},
	}
	emit := func(ctx context.Context) error {
		snap, err := r.Get(ctx)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(snap, nil)
		return nil
	}
	target := r.CollectionID() + "/" + r.id
	return r.client.watch(ctx, r.collection, pipeline, target, emit, func(err error) { fn(nil, err) })
}
