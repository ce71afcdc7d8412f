package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadbook-backend/internal/todo/domain"
	"leadbook-backend/internal/todo/repository"
	"leadbook-backend/pkg/docstore"
)

type fakeDismissals struct {
	mu   sync.Mutex
	set  map[string]bool
	fail error
}

func newFakeDismissals() *fakeDismissals {
	return &fakeDismissals{set: map[string]bool{}}
}

func (f *fakeDismissals) Dismiss(userID, day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set[userID+"|"+day] = true
	return nil
}

func (f *fakeDismissals) IsDismissed(userID, day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	return f.set[userID+"|"+day], nil
}

type fixture struct {
	uc         TodoUsecase
	store      *docstore.MemoryStore
	dismissals *fakeDismissals
	now        *time.Time
}

func setup() *fixture {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f := &fixture{now: &now, dismissals: newFakeDismissals()}
	clock := func() time.Time { return *f.now }
	f.store = docstore.NewMemoryStore(docstore.WithClock(clock))
	f.uc = NewTodoUsecase(repository.NewTodoRepository(f.store), f.dismissals, clock, time.UTC)
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func (f *fixture) seed(t *testing.T, fields map[string]interface{}) string {
	t.Helper()
	id, err := f.store.Create(context.Background(), repository.Collection, fields)
	require.NoError(t, err)
	return id
}

func TestAdd(t *testing.T) {
	f := setup()
	ctx := context.Background()

	first, err := f.uc.Add(ctx, "  call supplier  ")
	require.NoError(t, err)
	assert.Equal(t, "call supplier", first.Text)
	assert.Equal(t, "2026-03-10", first.Date)
	assert.Equal(t, 0, first.Order)

	second, err := f.uc.Add(ctx, "send invoice")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	_, err = f.uc.Add(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyText)
	assert.Equal(t, 2, f.store.Len(repository.Collection))
}

func TestToggleClearsLateFlag(t *testing.T) {
	f := setup()
	ctx := context.Background()
	id := f.seed(t, map[string]interface{}{
		"text": "carried", "date": "2026-03-10", "done": false, "isLate": true, "originalDate": "2026-03-09",
	})

	todo, err := f.uc.Toggle(ctx, id)
	require.NoError(t, err)
	assert.True(t, todo.Done)
	assert.False(t, todo.IsLate)
	assert.Equal(t, domain.StateLateResolved, todo.State())

	todo, err = f.uc.Toggle(ctx, id)
	require.NoError(t, err)
	assert.False(t, todo.Done)
	assert.False(t, todo.IsLate, "reopening does not make it late again")

	_, err = f.uc.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestRollover(t *testing.T) {
	f := setup()
	ctx := context.Background()
	openID := f.seed(t, map[string]interface{}{"text": "open", "date": "2026-03-09", "done": false, "isLate": false})
	doneID := f.seed(t, map[string]interface{}{"text": "done", "date": "2026-03-09", "done": true, "isLate": false})
	f.seed(t, map[string]interface{}{"text": "older", "date": "2026-03-08", "done": false, "isLate": false})

	result, err := f.uc.Rollover(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", result.From)
	assert.Equal(t, "2026-03-10", result.To)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Moved, 1)
	assert.Equal(t, openID, result.Moved[0].ID)
	assert.Equal(t, "1 unfinished task from yesterday carried over to today", result.Message)

	board, err := f.uc.Today(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, board.Todos, 1)
	moved := board.Todos[0]
	assert.Equal(t, "2026-03-10", moved.Date)
	assert.True(t, moved.IsLate)
	assert.Equal(t, "2026-03-09", moved.OriginalDate)

	// second run finds nothing left dated yesterday
	again, err := f.uc.Rollover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Count)
	assert.Empty(t, again.Moved)
	assert.Equal(t, "No unfinished tasks from yesterday", again.Message)

	board2, err := f.uc.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, board.Todos, board2.Todos)

	done, err := repository.NewTodoRepository(f.store).FindByID(ctx, doneID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", done.Date)
}

func TestRolloverUsesLocation(t *testing.T) {
	now := time.Date(2026, 3, 9, 21, 0, 0, 0, time.UTC)
	store := docstore.NewMemoryStore(docstore.WithClock(func() time.Time { return now }))
	karachi := time.FixedZone("PKT", 5*3600)
	uc := NewTodoUsecase(repository.NewTodoRepository(store), nil, func() time.Time { return now }, karachi)

	_, err := store.Create(context.Background(), repository.Collection, map[string]interface{}{"text": "x", "date": "2026-03-09", "done": false})
	require.NoError(t, err)

	result, err := uc.Rollover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", result.To)
	assert.Equal(t, 1, result.Count)
}

func TestTodayBoard(t *testing.T) {
	f := setup()
	ctx := context.Background()

	f.seed(t, map[string]interface{}{"text": "late", "date": "2026-03-10", "done": false, "isLate": true, "createdAt": f.now.Add(-48 * time.Hour)})
	f.advance(time.Minute)
	_, err := f.uc.Add(ctx, "older open")
	require.NoError(t, err)
	f.advance(time.Minute)
	done, err := f.uc.Add(ctx, "finished")
	require.NoError(t, err)
	_, err = f.uc.Toggle(ctx, done.ID)
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.uc.Add(ctx, "newer open")
	require.NoError(t, err)

	board, err := f.uc.Today(ctx, "u1")
	require.NoError(t, err)

	var texts []string
	for _, td := range board.Todos {
		texts = append(texts, td.Text)
	}
	assert.Equal(t, []string{"late", "newer open", "older open", "finished"}, texts)
	assert.Equal(t, domain.Stats{Completed: 1, Late: 1, Total: 4, Percent: 25}, board.Stats)
	assert.Equal(t, Banner{LateCount: 1, Show: true}, board.Banner)

	require.NoError(t, f.uc.DismissBanner(ctx, "u1"))
	board, err = f.uc.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Banner{LateCount: 1, Dismissed: true, Show: false}, board.Banner)

	other, err := f.uc.Today(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, other.Banner.Show, "dismissal is per user")

	f.advance(24 * time.Hour)
	nextDay, err := f.uc.Today(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", nextDay.Date)
	assert.Empty(t, nextDay.Todos)
}

func TestDismissalLookupFailureShowsBanner(t *testing.T) {
	f := setup()
	f.dismissals.fail = errors.New("db down")
	f.seed(t, map[string]interface{}{"text": "late", "date": "2026-03-10", "done": false, "isLate": true})

	board, err := f.uc.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, board.Banner.Show)
}

func TestWatch(t *testing.T) {
	f := setup()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := f.uc.Watch(ctx, "u1")
	require.NoError(t, err)
	defer feed.Close()

	board, ok := feed.Next()
	require.True(t, ok)
	assert.Empty(t, board.Todos)

	_, err = f.uc.Add(ctx, "from another tab")
	require.NoError(t, err)

	board, ok = feed.Next()
	require.True(t, ok)
	require.Len(t, board.Todos, 1)
	assert.Equal(t, "from another tab", board.Todos[0].Text)

	feed.Close()
	_, ok = feed.Next()
	assert.False(t, ok)
	assert.NoError(t, feed.Err())
}

func TestWatchFollowsNewDay(t *testing.T) {
	interval := dayCheckInterval
	dayCheckInterval = 5 * time.Millisecond
	defer func() { dayCheckInterval = interval }()

	f := setup()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.uc.Add(ctx, "before midnight")
	require.NoError(t, err)

	feed, err := f.uc.Watch(ctx, "u1")
	require.NoError(t, err)
	defer feed.Close()

	board, ok := feed.Next()
	require.True(t, ok)
	assert.Equal(t, "2026-03-10", board.Date)
	require.Len(t, board.Todos, 1)

	f.advance(24 * time.Hour)

	board, ok = feed.Next()
	require.True(t, ok)
	assert.Equal(t, "2026-03-11", board.Date)
	assert.Empty(t, board.Todos)

	_, err = f.uc.Add(ctx, "after midnight")
	require.NoError(t, err)

	board, ok = feed.Next()
	require.True(t, ok)
	assert.Equal(t, "2026-03-11", board.Date)
	require.Len(t, board.Todos, 1)
	assert.Equal(t, "after midnight", board.Todos[0].Text)

	feed.Close()
	_, ok = feed.Next()
	assert.False(t, ok)
	assert.NoError(t, feed.Err())
}
