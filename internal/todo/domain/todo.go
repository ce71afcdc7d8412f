package domain

import (
	"errors"
	"math"
	"sort"
	"time"
)

// DateLayout is how todo dates are stored: a calendar day with no time part.
const DateLayout = "2006-01-02"

// State is where a todo sits in the daily rollover lifecycle
type State string

const (
	StateCurrent      State = "current"
	StateLatePending  State = "late_pending"
	StateLateResolved State = "late_resolved"
)

// Todo is one item on a day's task list
type Todo struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Date         string     `json:"date"`
	Done         bool       `json:"done"`
	IsLate       bool       `json:"is_late"`
	OriginalDate string     `json:"original_date,omitempty"`
	Order        int        `json:"order"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	RolledOverAt *time.Time `json:"rolled_over_at,omitempty"`
}

// State derives the lifecycle state from the stored flags.
func (t Todo) State() State {
	switch {
	case t.IsLate && !t.Done:
		return StateLatePending
	case t.OriginalDate != "" && !t.IsLate:
		return StateLateResolved
	default:
		return StateCurrent
	}
}

var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrEmptyText    = errors.New("task text required")
)

// Day formats t as a todo date in loc.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Yesterday returns the calendar day before t in loc.
func Yesterday(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()-1, 12, 0, 0, 0, loc).Format(DateLayout)
}

// SortForDisplay orders a day's list: late items first, then open items,
// then done items, each group newest first. The input is not modified.
func SortForDisplay(todos []Todo) []Todo {
	out := make([]Todo, len(todos))
	copy(out, todos)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsLate != b.IsLate {
			return a.IsLate
		}
		if a.Done != b.Done {
			return !a.Done
		}
		return createdSeconds(a) > createdSeconds(b)
	})
	return out
}

// A todo whose creation time has not been committed yet sorts as the oldest.
func createdSeconds(t Todo) int64 {
	if t.CreatedAt == nil {
		return 0
	}
	return t.CreatedAt.Unix()
}

// Stats summarizes a day's list
type Stats struct {
	Completed int `json:"completed"`
	Late      int `json:"late"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// ComputeStats counts completed and late items. Percent rounds to the nearest integer.
func ComputeStats(todos []Todo) Stats {
	s := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Done {
			s.Completed++
		}
		if t.IsLate {
			s.Late++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
