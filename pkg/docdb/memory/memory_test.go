package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
	"github.com/unifiedui/typed-docdb/pkg/docdb/memory"
)

type user struct {
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	Active bool     `json:"active"`
	Tags   []string `json:"tags,omitempty"`
}

func seedUsers(t *testing.T, db *memory.Client) {
	t.Helper()
	ctx := context.Background()
	users := map[string]user{
		"alice": {Name: "Alice", Age: 30, Active: true, Tags: []string{"admin", "ops"}},
		"bob":   {Name: "Bob", Age: 17, Active: true, Tags: []string{"ops"}},
		"carol": {Name: "Carol", Age: 45, Active: false},
		"dave":  {Name: "Dave", Age: 22, Active: true, Tags: []string{"dev"}},
	}
	for id, u := range users {
		_, err := db.Collection("users").Doc(id).Set(ctx, u)
		require.NoError(t, err)
	}
}

func TestDocument_SetGetDelete(t *testing.T) {
	db := memory.NewClient()
	ctx := context.Background()
	ref := db.Collection("users").Doc("alice")

	res, err := ref.Set(ctx, user{Name: "Alice", Age: 30})
	require.NoError(t, err)
	assert.False(t, res.UpdateTime.IsZero())

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, "alice", snap.ID)

	var got user
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 30, got.Age)

	_, err = ref.Delete(ctx)
	require.NoError(t, err)

	snap, err = ref.Get(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Exists)
	assert.Nil(t, snap.Data())
	assert.ErrorIs(t, snap.DataTo(&got), docdb.ErrNotFound)
}

func TestDocument_SetPreservesCreateTime(t *testing.T) {
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db := memory.NewClient(memory.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	ctx := context.Background()
	ref := db.Collection("users").Doc("alice")

	_, err := ref.Set(ctx, user{Name: "Alice"})
	require.NoError(t, err)
	first, err := ref.Get(ctx)
	require.NoError(t, err)

	_, err = ref.Set(ctx, user{Name: "Alice B"})
	require.NoError(t, err)
	second, err := ref.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.CreateTime, second.CreateTime)
	assert.True(t, second.UpdateTime.After(first.UpdateTime))
}

func TestDocument_UpdateMergesFields(t *testing.T) {
	db := memory.NewClient()
	ctx := context.Background()
	ref := db.Collection("users").Doc("alice")

	_, err := ref.Set(ctx, map[string]any{"name": "Alice", "profile": map[string]any{"city": "Berlin"}})
	require.NoError(t, err)

	_, err = ref.Update(ctx, map[string]any{"age": 31, "profile.zip": "10115"})
	require.NoError(t, err)

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	data := snap.Data()
	assert.Equal(t, "Alice", data["name"])
	assert.Equal(t, float64(31), data["age"])
	assert.Equal(t, map[string]any{"city": "Berlin", "zip": "10115"}, data["profile"])
}

func TestDocument_UpdateMissingFails(t *testing.T) {
	db := memory.NewClient()

	_, err := db.Collection("users").Doc("ghost").Update(context.Background(), map[string]any{"age": 1})

	assert.ErrorIs(t, err, docdb.ErrNotFound)
	assert.Equal(t, 0, db.Len("users"))
}

func TestDocument_UpdatePreconditions(t *testing.T) {
	db := memory.NewClient()
	ctx := context.Background()
	ref := db.Collection("users").Doc("alice")

	res, err := ref.Set(ctx, user{Name: "Alice"})
	require.NoError(t, err)

	_, err = ref.Update(ctx, map[string]any{"age": 1}, docdb.LastUpdateTime(res.UpdateTime.Add(-time.Hour)))
	assert.ErrorIs(t, err, docdb.ErrPreconditionFailed)

	_, err = ref.Update(ctx, map[string]any{"age": 2}, docdb.LastUpdateTime(res.UpdateTime))
	assert.NoError(t, err)

	_, err = ref.Update(ctx, map[string]any{"age": 3}, docdb.Exists(false))
	assert.ErrorIs(t, err, docdb.ErrPreconditionFailed)
}

func TestDocument_SetRejectsNonObject(t *testing.T) {
	db := memory.NewClient()

	_, err := db.Collection("users").Doc("x").Set(context.Background(), 42)

	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)
}

func TestCollection_NewDocUsesGenerator(t *testing.T) {
	db := memory.NewClient(memory.WithIDGenerator(func() string { return "fixed-id" }))

	ref := db.Collection("users").NewDoc()

	assert.Equal(t, "fixed-id", ref.ID())
	assert.Equal(t, "users", ref.CollectionID())
}

func TestCollection_NewDocDefaultIDs(t *testing.T) {
	db := memory.NewClient()
	coll := db.Collection("users")

	a := coll.NewDoc().ID()
	b := coll.NewDoc().ID()

	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
}

func TestQuery_Operators(t *testing.T) {
	db := memory.NewClient()
	seedUsers(t, db)
	users := db.Collection("users")
	ctx := context.Background()

	tests := []struct {
		name  string
		query docdb.Query
		want  []string
	}{
		{"equal", users.Where("active", docdb.OpEqual, true), []string{"alice", "bob", "dave"}},
		{"not equal", users.Where("name", docdb.OpNotEqual, "Bob"), []string{"alice", "carol", "dave"}},
		{"less", users.Where("age", docdb.OpLess, 22), []string{"bob"}},
		{"less equal", users.Where("age", docdb.OpLessEqual, 22), []string{"bob", "dave"}},
		{"greater", users.Where("age", docdb.OpGreater, 30), []string{"carol"}},
		{"greater equal", users.Where("age", docdb.OpGreaterEqual, 30), []string{"alice", "carol"}},
		{"array contains", users.Where("tags", docdb.OpArrayContains, "ops"), []string{"alice", "bob"}},
		{"array contains any", users.Where("tags", docdb.OpArrayContainsAny, []string{"dev", "admin"}), []string{"alice", "dave"}},
		{"in", users.Where("name", docdb.OpIn, []string{"Bob", "Carol"}), []string{"bob", "carol"}},
		{"not in", users.Where("name", docdb.OpNotIn, []string{"Bob", "Carol"}), []string{"alice", "dave"}},
		{"chained", users.Where("age", docdb.OpGreaterEqual, 18).Where("active", docdb.OpEqual, true), []string{"alice", "dave"}},
		{"limit", users.Limit(2), []string{"alice", "bob"}},
		{"missing field", users.Where("email", docdb.OpEqual, "x"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := tt.query.Get(ctx)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Equal(t, 0, snap.Size())
				return
			}
			assert.Equal(t, tt.want, snap.IDs())
		})
	}
}

func TestQuery_IsImmutable(t *testing.T) {
	db := memory.NewClient()
	seedUsers(t, db)
	ctx := context.Background()

	base := db.Collection("users").Where("active", docdb.OpEqual, true)
	narrowed := base.Where("age", docdb.OpGreater, 25)
	limited := base.Limit(1)

	all, err := base.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Size())

	few, err := narrowed.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, few.IDs())

	one, err := limited.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, one.Size())

	assert.Len(t, base.(*memory.Query).Conditions(), 1)
	assert.Equal(t, 0, base.(*memory.Query).LimitCount())
}

func TestQuery_InvalidArguments(t *testing.T) {
	db := memory.NewClient()
	users := db.Collection("users")
	ctx := context.Background()

	_, err := users.Where("age", docdb.Operator("~="), 1).Get(ctx)
	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)

	_, err = users.Where("age", docdb.OpIn, 1).Get(ctx)
	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)

	_, err = users.Limit(-1).Get(ctx)
	assert.ErrorIs(t, err, docdb.ErrInvalidArgument)
}

func TestBatch_CommitsAllWrites(t *testing.T) {
	db := memory.NewClient()
	ctx := context.Background()
	users := db.Collection("users")

	_, err := users.Doc("carol").Set(ctx, user{Name: "Carol"})
	require.NoError(t, err)

	results, err := db.Batch().
		Set(users.Doc("alice"), user{Name: "Alice"}).
		Set(users.Doc("bob"), user{Name: "Bob"}).
		Update(users.Doc("alice"), map[string]any{"age": 30}).
		Delete(users.Doc("carol")).
		Commit(ctx)

	require.NoError(t, err)
	assert.Len(t, results, 4)
	assert.Equal(t, 2, db.Len("users"))

	snap, err := users.Doc("alice").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(30), snap.Data()["age"])
}

func TestBatch_IsAtomic(t *testing.T) {
	db := memory.NewClient(memory.WithWriteHook(func(w memory.Write) error {
		if w.ID == "bad" {
			return errors.New("rejected")
		}
		return nil
	}))
	ctx := context.Background()
	users := db.Collection("users")

	_, err := db.Batch().
		Set(users.Doc("alice"), user{Name: "Alice"}).
		Set(users.Doc("bad"), user{Name: "Bad"}).
		Commit(ctx)

	assert.EqualError(t, err, "rejected")
	assert.Equal(t, 0, db.Len("users"))
}

func TestWriteHook_CanReadThroughClient(t *testing.T) {
	var db *memory.Client
	var seen []bool
	db = memory.NewClient(memory.WithWriteHook(func(w memory.Write) error {
		snap, err := db.Collection(w.Collection).Doc(w.ID).Get(context.Background())
		if err != nil {
			return err
		}
		seen = append(seen, snap.Exists)
		return nil
	}))
	ctx := context.Background()
	ref := db.Collection("users").Doc("alice")

	done := make(chan error, 1)
	go func() {
		_, err := ref.Set(ctx, user{Name: "Alice"})
		if err == nil {
			_, err = ref.Update(ctx, map[string]any{"age": 31})
		}
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("write hook blocked the commit")
	}
	assert.Equal(t, []bool{false, true}, seen)
}

func TestBatch_UpdateOfDocumentSetEarlierInBatch(t *testing.T) {
	db := memory.NewClient()
	ctx := context.Background()
	ref := db.Collection("users").Doc("alice")

	_, err := db.Batch().
		Set(ref, user{Name: "Alice"}).
		Update(ref, map[string]any{"active": true}).
		Commit(ctx)
	require.NoError(t, err)

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, snap.Data()["active"])
}

func TestBatch_RejectsForeignRef(t *testing.T) {
	db := memory.NewClient()
	other := memory.NewClient()

	_, err := db.Batch().
		Set(other.Collection("users").Doc("alice"), user{Name: "Alice"}).
		Commit(context.Background())

	assert.ErrorIs(t, err, docdb.ErrForeignRef)
}

func TestBatch_EmptyCommit(t *testing.T) {
	results, err := memory.NewClient().Batch().Commit(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, results)
}

type recorder[T any] struct {
	mu   sync.Mutex
	seen []T
	ch   chan struct{}
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{ch: make(chan struct{}, 64)}
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	r.seen = append(r.seen, v)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder[T]) wait(t *testing.T, n int) []T {
	t.Helper()
	for {
		r.mu.Lock()
		if len(r.seen) >= n {
			out := append([]T(nil), r.seen...)
			r.mu.Unlock()
			return out
		}
		r.mu.Unlock()
		select {
		case <-r.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %d callbacks", n)
		}
	}
}

func TestDocument_OnSnapshot(t *testing.T) {
	db := memory.NewClient()
	ctx := context.Background()
	ref := db.Collection("users").Doc("alice")

	rec := newRecorder[*docdb.DocumentSnapshot]()
	unsubscribe := ref.OnSnapshot(ctx, func(s *docdb.DocumentSnapshot, err error) {
		assert.NoError(t, err)
		rec.add(s)
	})
	defer unsubscribe()

	first := rec.wait(t, 1)
	assert.False(t, first[0].Exists)

	_, err := ref.Set(ctx, user{Name: "Alice"})
	require.NoError(t, err)
	_, err = db.Collection("users").Doc("bob").Set(ctx, user{Name: "Bob"})
	require.NoError(t, err)
	_, err = ref.Update(ctx, map[string]any{"age": 5})
	require.NoError(t, err)

	snaps := rec.wait(t, 3)
	assert.True(t, snaps[1].Exists)
	assert.Equal(t, float64(5), snaps[2].Data()["age"])
}

func TestQuery_OnSnapshot(t *testing.T) {
	db := memory.NewClient()
	seedUsers(t, db)
	ctx := context.Background()
	adults := db.Collection("users").Where("age", docdb.OpGreaterEqual, 18)

	rec := newRecorder[[]string]()
	unsubscribe := adults.OnSnapshot(ctx, func(s *docdb.QuerySnapshot, err error) {
		assert.NoError(t, err)
		rec.add(s.IDs())
	})

	assert.Equal(t, []string{"alice", "carol", "dave"}, rec.wait(t, 1)[0])

	_, err := db.Collection("users").Doc("bob").Update(ctx, map[string]any{"age": 18})
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, rec.wait(t, 2)[1])

	unsubscribe()
	unsubscribe()

	_, err = db.Collection("users").Doc("erin").Set(ctx, user{Name: "Erin", Age: 40})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	rec.mu.Lock()
	assert.Len(t, rec.seen, 2)
	rec.mu.Unlock()
}

func TestQuery_OnSnapshotInvalidQueryReportsError(t *testing.T) {
	db := memory.NewClient()

	errs := make(chan error, 1)
	unsubscribe := db.Collection("users").Limit(-5).OnSnapshot(context.Background(), func(_ *docdb.QuerySnapshot, err error) {
		errs <- err
	})
	defer unsubscribe()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, docdb.ErrInvalidArgument)
	case <-time.After(2 * time.Second):
		t.Fatal("no callback")
	}
}

func TestClient_Close(t *testing.T) {
	db := memory.NewClient()
	ctx := context.Background()

	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.Close(ctx))

	assert.ErrorIs(t, db.Ping(ctx), docdb.ErrClosed)
	_, err := db.Collection("users").Doc("a").Set(ctx, user{})
	assert.ErrorIs(t, err, docdb.ErrClosed)
	_, err = db.Collection("users").Get(ctx)
	assert.ErrorIs(t, err, docdb.ErrClosed)
}
