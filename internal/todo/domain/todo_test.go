package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(sec int64) *time.Time {
	t := time.Unix(sec, 0)
	return &t
}

func TestState(t *testing.T) {
	tests := []struct {
		name string
		todo Todo
		want State
	}{
		{"fresh", Todo{}, StateCurrent},
		{"fresh done", Todo{Done: true}, StateCurrent},
		{"rolled over", Todo{IsLate: true, OriginalDate: "2026-03-09"}, StateLatePending},
		{"rolled over then completed", Todo{Done: true, OriginalDate: "2026-03-09"}, StateLateResolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.todo.State())
		})
	}
}

func TestDayAndYesterdayUseLocation(t *testing.T) {
	karachi := time.FixedZone("PKT", 5*3600)
	// 21:30 UTC on the 9th is already the 10th in Karachi
	now := time.Date(2026, 3, 9, 21, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-09", Day(now, time.UTC))
	assert.Equal(t, "2026-03-10", Day(now, karachi))
	assert.Equal(t, "2026-03-09", Yesterday(now, karachi))
	assert.Equal(t, "2026-02-28", Yesterday(time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC), time.UTC))
}

func TestSortForDisplay(t *testing.T) {
	todos := []Todo{
		{ID: "done-new", Done: true, CreatedAt: at(300)},
		{ID: "open-old", CreatedAt: at(100)},
		{ID: "late", IsLate: true, CreatedAt: at(50)},
		{ID: "open-new", CreatedAt: at(200)},
		{ID: "open-pending"},
		{ID: "done-old", Done: true, CreatedAt: at(10)},
	}

	sorted := SortForDisplay(todos)

	var ids []string
	for _, td := range sorted {
		ids = append(ids, td.ID)
	}
	assert.Equal(t, []string{"late", "open-new", "open-old", "open-pending", "done-new", "done-old"}, ids)
	assert.Equal(t, "done-new", todos[0].ID, "input untouched")
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))

	s := ComputeStats([]Todo{{Done: true}, {IsLate: true}, {}})
	assert.Equal(t, Stats{Completed: 1, Late: 1, Total: 3, Percent: 33}, s)

	s = ComputeStats([]Todo{{Done: true}, {Done: true}, {}})
	assert.Equal(t, 67, s.Percent)
}
