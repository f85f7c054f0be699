package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

var now = func() time.Time { return time.Now().UTC() }

// toDocument encodes data as a BSON document keyed by id. Any _id carried by
// data itself is replaced.
func toDocument(id string, data any) (bson.D, error) {
	if data == nil {
		return bson.D{{Key: idField, Value: id}}, nil
	}
	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docdb.ErrInvalidArgument, err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", docdb.ErrInvalidArgument, err)
	}

	doc := make(bson.D, 0, len(fields)+1)
	doc = append(doc, bson.E{Key: idField, Value: id})
	for _, f := range fields {
		if f.Key == idField {
			continue
		}
		doc = append(doc, f)
	}
	return doc, nil
}

// toSet builds a $set update from dot-separated field paths.
func toSet(fields map[string]any) (bson.D, error) {
	if _, ok := fields[idField]; ok {
		return nil, fmt.Errorf("%w: %s cannot be updated", docdb.ErrInvalidArgument, idField)
	}
	set := make(bson.M, len(fields))
	for path, v := range fields {
		set[path] = v
	}
	return bson.D{{Key: "$set", Value: set}}, nil
}

// checkPreconditions rejects preconditions MongoDB cannot enforce. Updates
// already require the document to exist, so Exists(true) needs no check.
func checkPreconditions(preconds []docdb.Precondition) error {
	for _, p := range preconds {
		if p.Exists != nil && !*p.Exists {
			return fmt.Errorf("%w: update cannot require a missing document", docdb.ErrUnsupported)
		}
		if !p.LastUpdateTime.IsZero() {
			return fmt.Errorf("%w: mongodb keeps no last update time", docdb.ErrUnsupported)
		}
	}
	return nil
}

// toDocumentSnapshot decodes a stored document. The _id field is reported as
// the snapshot id and left out of Data.
func toDocumentSnapshot(collection string, raw bson.Raw) (*docdb.DocumentSnapshot, error) {
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	id := idString(fields[idField])
	delete(fields, idField)

	decode := func(v any) error {
		return bson.Unmarshal(raw, v)
	}
	snap := docdb.NewDocumentSnapshot(collection, id, true, map[string]any(fields), decode)
	snap.ReadTime = now()
	return snap, nil
}

// idString reports a stored _id in the form Doc accepts.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprint(id)
	}
}

func missingSnapshot(collection, id string) *docdb.DocumentSnapshot {
	snap := docdb.NewDocumentSnapshot(collection, id, false, nil, nil)
	snap.ReadTime = now()
	return snap
}
