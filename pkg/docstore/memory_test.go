package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*MemoryStore, *time.Time) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	n := 0
	store := NewMemoryStore(
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("doc-%03d", n)
		}),
	)
	return store, &now
}

func receive(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription closed unexpectedly")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStore()

	t.Run("create resolves server timestamps", func(t *testing.T) {
		id, err := store.Create(ctx, "leads", map[string]interface{}{
			"fullName":  "Ada",
			"createdAt": ServerTimestamp,
		})
		require.NoError(t, err)
		assert.Equal(t, "doc-001", id)

		doc, err := store.Get(ctx, "leads", id)
		require.NoError(t, err)
		assert.Equal(t, "Ada", doc.Data["fullName"])
		assert.Equal(t, *now, doc.Data["createdAt"])
	})

	t.Run("update merges fields", func(t *testing.T) {
		err := store.Update(ctx, "leads", "doc-001", []Update{{Field: "status", Value: "Pending"}})
		require.NoError(t, err)

		doc, err := store.Get(ctx, "leads", "doc-001")
		require.NoError(t, err)
		assert.Equal(t, "Ada", doc.Data["fullName"])
		assert.Equal(t, "Pending", doc.Data["status"])
	})

	t.Run("array union appends only new elements", func(t *testing.T) {
		first := map[string]interface{}{"text": "hello"}
		require.NoError(t, store.Update(ctx, "leads", "doc-001", []Update{{Field: "comments", Value: ArrayUnion(first)}}))
		require.NoError(t, store.Update(ctx, "leads", "doc-001", []Update{{Field: "comments", Value: ArrayUnion(first, map[string]interface{}{"text": "again"})}}))

		doc, err := store.Get(ctx, "leads", "doc-001")
		require.NoError(t, err)
		assert.Len(t, doc.Data["comments"], 2)
	})

	t.Run("update of a missing document", func(t *testing.T) {
		err := store.Update(ctx, "leads", "nope", []Update{{Field: "status", Value: "Pending"}})
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		doc, err := store.Get(ctx, "leads", "doc-001")
		require.NoError(t, err)
		doc.Data["fullName"] = "Mutated"

		again, err := store.Get(ctx, "leads", "doc-001")
		require.NoError(t, err)
		assert.Equal(t, "Ada", again.Data["fullName"])
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "leads", "doc-001"))
		_, err := store.Get(ctx, "leads", "doc-001")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, store.Delete(ctx, "leads", "doc-001"))
	})
}

func TestMemoryStoreQuery(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	for _, fields := range []map[string]interface{}{
		{"date": "2026-03-09", "done": false},
		{"date": "2026-03-09", "done": true},
		{"date": "2026-03-10", "done": false},
	} {
		_, err := store.Create(ctx, "todos", fields)
		require.NoError(t, err)
	}

	docs, err := store.Query(ctx, "todos", Eq("date", "2026-03-09"), Eq("done", false))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-001", docs[0].ID)

	all, err := store.Query(ctx, "todos")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	sub, err := store.Subscribe(ctx, "todos", Eq("date", "2026-03-10"))
	require.NoError(t, err)
	defer sub.Close()

	initial := receive(t, sub)
	assert.Empty(t, initial.Documents)

	_, err = store.Create(ctx, "todos", map[string]interface{}{"date": "2026-03-10", "text": "call"})
	require.NoError(t, err)
	snap := receive(t, sub)
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, "call", snap.Documents[0].Data["text"])

	t.Run("writes outside the filter still produce a full snapshot", func(t *testing.T) {
		_, err := store.Create(ctx, "todos", map[string]interface{}{"date": "2026-03-09"})
		require.NoError(t, err)
		snap := receive(t, sub)
		assert.Len(t, snap.Documents, 1)
	})

	t.Run("latest snapshot wins for slow consumers", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := store.Create(ctx, "todos", map[string]interface{}{"date": "2026-03-10"})
			require.NoError(t, err)
		}
		snap := receive(t, sub)
		assert.Len(t, snap.Documents, 6)
	})
}

func TestSubscriptionClose(t *testing.T) {
	store, _ := newTestStore()

	t.Run("explicit close", func(t *testing.T) {
		sub, err := store.Subscribe(context.Background(), "leads")
		require.NoError(t, err)
		receive(t, sub)

		sub.Close()
		sub.Close()

		_, ok := <-sub.Snapshots()
		assert.False(t, ok)
		assert.NoError(t, sub.Err())

		_, err = store.Create(context.Background(), "leads", map[string]interface{}{"fullName": "x"})
		assert.NoError(t, err)
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		sub, err := store.Subscribe(ctx, "leads")
		require.NoError(t, err)

		cancel()
		select {
		case <-sub.Done():
		case <-time.After(time.Second):
			t.Fatal("subscription not closed after cancel")
		}
	})
}

func TestMemoryBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	id, err := store.Create(ctx, "todos", map[string]interface{}{"date": "2026-03-09"})
	require.NoError(t, err)

	b := store.Batch()
	b.Update("todos", id, []Update{{Field: "date", Value: "2026-03-10"}})
	b.Update("todos", "missing", []Update{{Field: "date", Value: "2026-03-10"}})
	err = b.Commit(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	doc, err := store.Get(ctx, "todos", id)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", doc.Data["date"], "no partial effect on failure")

	b = store.Batch()
	b.Update("todos", id, []Update{{Field: "date", Value: "2026-03-10"}, {Field: "rolledOverAt", Value: ServerTimestamp}})
	require.NoError(t, b.Commit(ctx))

	doc, err = store.Get(ctx, "todos", id)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", doc.Data["date"])
	assert.NotNil(t, doc.Data["rolledOverAt"])
}
