package mongodb

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// toFilter translates one condition into a MongoDB filter document.
// Not-equal and not-in also require the field to be present and non-null so
// that documents missing the field are excluded, as they are on Firestore.
func toFilter(field string, op docdb.Operator, value any) (bson.D, error) {
	var expr bson.D
	switch op {
	case docdb.OpLess:
		expr = bson.D{{Key: "$lt", Value: value}}
	case docdb.OpLessEqual:
		expr = bson.D{{Key: "$lte", Value: value}}
	case docdb.OpEqual:
		expr = bson.D{{Key: "$eq", Value: value}}
	case docdb.OpGreater:
		expr = bson.D{{Key: "$gt", Value: value}}
	case docdb.OpGreaterEqual:
		expr = bson.D{{Key: "$gte", Value: value}}
	case docdb.OpNotEqual:
		expr = bson.D{
			{Key: "$exists", Value: true},
			{Key: "$nin", Value: bson.A{value, nil}},
		}
	case docdb.OpArrayContains:
		expr = bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$eq", Value: value}}}}
	case docdb.OpArrayContainsAny:
		values, err := toArray(op, value)
		if err != nil {
			return nil, err
		}
		expr = bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$in", Value: values}}}}
	case docdb.OpIn:
		values, err := toArray(op, value)
		if err != nil {
			return nil, err
		}
		expr = bson.D{{Key: "$in", Value: values}}
	case docdb.OpNotIn:
		values, err := toArray(op, value)
		if err != nil {
			return nil, err
		}
		expr = bson.D{
			{Key: "$exists", Value: true},
			{Key: "$nin", Value: append(values, nil)},
		}
	default:
		return nil, fmt.Errorf("%w: unknown operator %q", docdb.ErrInvalidArgument, op)
	}
	return bson.D{{Key: field, Value: expr}}, nil
}

// combine joins filters with $and, keeping their order.
func combine(filters []bson.D) bson.D {
	switch len(filters) {
	case 0:
		return bson.D{}
	case 1:
		return filters[0]
	}
	clauses := make(bson.A, 0, len(filters))
	for _, f := range filters {
		clauses = append(clauses, f)
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

func toArray(op docdb.Operator, value any) (bson.A, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%w: operator %q needs a list value", docdb.ErrInvalidArgument, op)
	}
	out := make(bson.A, 0, rv.Len()+1)
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out, nil
}

// idFilter matches the document stored under id. A 24 character hex id also
// matches a document keyed by the equivalent ObjectID.
func idFilter(id string) bson.D {
	return idMatch(idField, id)
}

func idMatch(key, id string) bson.D {
	if oid, ok := objectID(id); ok {
		return bson.D{{Key: key, Value: bson.D{{Key: "$in", Value: bson.A{id, oid}}}}}
	}
	return bson.D{{Key: key, Value: id}}
}

func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}
