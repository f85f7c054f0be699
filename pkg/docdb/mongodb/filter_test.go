package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

func TestToFilter(t *testing.T) {
	tests := []struct {
		name  string
		op    docdb.Operator
		value any
		want  bson.D
	}{
		{"less", docdb.OpLess, 5, bson.D{{Key: "f", Value: bson.D{{Key: "$lt", Value: 5}}}}},
		{"less equal", docdb.OpLessEqual, 5, bson.D{{Key: "f", Value: bson.D{{Key: "$lte", Value: 5}}}}},
		{"equal", docdb.OpEqual, "x", bson.D{{Key: "f", Value: bson.D{{Key: "$eq", Value: "x"}}}}},
		{"greater", docdb.OpGreater, 5, bson.D{{Key: "f", Value: bson.D{{Key: "$gt", Value: 5}}}}},
		{"greater equal", docdb.OpGreaterEqual, 5, bson.D{{Key: "f", Value: bson.D{{Key: "$gte", Value: 5}}}}},
		{"not equal", docdb.OpNotEqual, "x", bson.D{{Key: "f", Value: bson.D{
			{Key: "$exists", Value: true},
			{Key: "$nin", Value: bson.A{"x", nil}},
		}}}},
		{"array contains", docdb.OpArrayContains, "x", bson.D{{Key: "f", Value: bson.D{
			{Key: "$elemMatch", Value: bson.D{{Key: "$eq", Value: "x"}}},
		}}}},
		{"array contains any", docdb.OpArrayContainsAny, []string{"x", "y"}, bson.D{{Key: "f", Value: bson.D{
			{Key: "$elemMatch", Value: bson.D{{Key: "$in", Value: bson.A{"x", "y"}}}},
		}}}},
		{"in", docdb.OpIn, []int{1, 2}, bson.D{{Key: "f", Value: bson.D{{Key: "$in", Value: bson.A{1, 2}}}}}},
		{"not in", docdb.OpNotIn, []int{1, 2}, bson.D{{Key: "f", Value: bson.D{
			{Key: "$exists", Value: true},
			{Key: "$nin", Value: bson.A{1, 2, nil}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toFilter("f", tt.op, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFilter_Errors(t *testing.T) {
	_, err := toFilter("f", docdb.Operator("like"), "x")
	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)

	_, err = toFilter("f", docdb.OpIn, "not-a-list")
	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)

	_, err = toFilter("f", docdb.OpNotIn, nil)
	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)
}

func TestCombine(t *testing.T) {
	a := bson.D{{Key: "a", Value: 1}}
	b := bson.D{{Key: "b", Value: 2}}

	assert.Equal(t, bson.D{}, combine(nil))
	assert.Equal(t, a, combine([]bson.D{a}))
	assert.Equal(t, bson.D{{Key: "$and", Value: bson.A{a, b}}}, combine([]bson.D{a, b}))
}

func TestQuery_FoldsInOrder(t *testing.T) {
	q := &Query{}

	folded := q.Where("age", docdb.OpGreaterEqual, 18).
		Where("active", docdb.OpEqual, true).
		Limit(10).(*Query)

	assert.Empty(t, q.filters)
	assert.Equal(t, int64(10), folded.limit)
	assert.Equal(t, bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}}},
		bson.D{{Key: "active", Value: bson.D{{Key: "$eq", Value: true}}}},
	}}}, folded.Filter())
}

func TestQuery_InvalidConditionSticks(t *testing.T) {
	q := (&Query{}).Where("f", docdb.Operator("~"), 1).Where("g", docdb.OpEqual, 2).(*Query)

	assert.ErrorIs(t, q.err, docdb.ErrInvalidArgument)
	assert.Empty(t, q.filters)

	limited := (&Query{}).Limit(-1).(*Query)
	assert.ErrorIs(t, limited.err, docdb.ErrInvalidArgument)
}

type account struct {
	ID    string `bson:"_id,omitempty"`
	Owner string `bson:"owner"`
}

func TestToDocument(t *testing.T) {
	doc, err := toDocument("acc-1", account{ID: "ignored", Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "_id", Value: "acc-1"}, {Key: "owner", Value: "alice"}}, doc)

	doc, err = toDocument("acc-2", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "_id", Value: "acc-2"}}, doc)

	_, err = toDocument("acc-3", 42)
	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)
}

func TestToSet(t *testing.T) {
	update, err := toSet(map[string]any{"profile.city": "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.M{"profile.city": "Berlin"}}}, update)

	_, err = toSet(map[string]any{"_id": "x"})
	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)
}

func TestCheckPreconditions(t *testing.T) {
	assert.NoError(t, checkPreconditions(nil))
	assert.NoError(t, checkPreconditions([]docdb.Precondition{docdb.Exists(true)}))
	assert.ErrorIs(t, checkPreconditions([]docdb.Precondition{docdb.Exists(false)}), docdb.ErrUnsupported)
	assert.ErrorIs(t, checkPreconditions([]docdb.Precondition{docdb.LastUpdateTime(time.Now())}), docdb.ErrUnsupported)
}

func TestToDocumentSnapshot(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: "acc-1"}, {Key: "owner", Value: "alice"}})
	require.NoError(t, err)

	snap, err := toDocumentSnapshot("accounts", raw)
	require.NoError(t, err)

	assert.Equal(t, "acc-1", snap.ID)
	assert.True(t, snap.Exists)
	assert.Equal(t, map[string]any{"owner": "alice"}, snap.Data())

	var got account
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, account{ID: "acc-1", Owner: "alice"}, got)
}

func TestToDocumentSnapshot_ObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: oid}, {Key: "owner", Value: "bob"}})
	require.NoError(t, err)

	snap, err := toDocumentSnapshot("accounts", raw)
	require.NoError(t, err)

	assert.Equal(t, oid.Hex(), snap.ID)
	assert.Equal(t, map[string]any{"owner": "bob"}, snap.Data())
	assert.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid.Hex(), oid}}}}}, idFilter(snap.ID))
}

func TestIDFilter(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "_id", Value: "alice"}}, idFilter("alice"))
	assert.Equal(t, bson.D{{Key: "_id", Value: "6ad41254"}}, idFilter("6ad41254"))

	hex := "6ad412545f1e2c3b4a596877"
	oid, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	assert.Equal(t,
		bson.D{{Key: "documentKey._id", Value: bson.D{{Key: "$in", Value: bson.A{hex, oid}}}}},
		idMatch("documentKey._id", hex))
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, "alice", idString("alice"))
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "42", idString(int32(42)))
}
