package firestore

import (
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

func TestToUpdates_SortedPaths(t *testing.T) {
	updates := toUpdates(map[string]any{
		"profile.city": "Berlin",
		"age":          31,
		"active":       true,
	})

	require.Len(t, updates, 3)
	assert.Equal(t, firestore.Update{Path: "active", Value: true}, updates[0])
	assert.Equal(t, firestore.Update{Path: "age", Value: 31}, updates[1])
	assert.Equal(t, firestore.Update{Path: "profile.city", Value: "Berlin"}, updates[2])
}

func TestToPreconditions(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	out, err := toPreconditions([]docdb.Precondition{docdb.Exists(true), docdb.LastUpdateTime(ts)})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = toPreconditions(nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = toPreconditions([]docdb.Precondition{docdb.Exists(false)})
	assert.ErrorIs(t, err, docdb.ErrUnsupported)
}

func TestToWriteResult(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, ts, toWriteResult(&firestore.WriteResult{UpdateTime: ts}).UpdateTime)
	assert.True(t, toWriteResult(nil).UpdateTime.IsZero())
}
