package usecase

import (
	"context"

	"leadbook-backend/internal/todo/domain"
)

// TodoUsecase defines the interface for the daily todo board
type TodoUsecase interface {
	// Today returns today's list in display order with stats and the late banner for userID
	Today(ctx context.Context, userID string) (*Board, error)

	// Add appends a todo to today's list
	Add(ctx context.Context, text string) (*domain.Todo, error)

	// Toggle flips done. Toggling a late item also clears its late flag.
	Toggle(ctx context.Context, id string) (*domain.Todo, error)

	Delete(ctx context.Context, id string) error

	// Rollover moves yesterday's unfinished todos onto today. Safe to call repeatedly.
	Rollover(ctx context.Context) (*RolloverResult, error)

	// DismissBanner hides today's late banner for userID
	DismissBanner(ctx context.Context, userID string) error

	// Watch streams today's list every time it changes
	Watch(ctx context.Context, userID string) (*Feed, error)

	// Day is today's date in the board's timezone
	Day() string
}

// Board is what the todo panel renders
type Board struct {
	Date   string        `json:"date"`
	Todos  []domain.Todo `json:"todos"`
	Stats  domain.Stats  `json:"stats"`
	Banner Banner        `json:"banner"`
}

// Banner tells the panel whether to show the "carried over from yesterday" notice
type Banner struct {
	LateCount int  `json:"late_count"`
	Dismissed bool `json:"dismissed"`
	Show      bool `json:"show"`
}

// RolloverResult describes one rollover pass
type RolloverResult struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Moved   []domain.Todo `json:"moved"`
	Count   int           `json:"count"`
	Message string        `json:"message"`
}

// NewBoard assembles the panel view from a day's todos.
func NewBoard(day string, todos []domain.Todo, dismissed bool) *Board {
	sorted := domain.SortForDisplay(todos)
	late := 0
	for _, t := range sorted {
		if t.State() == domain.StateLatePending {
			late++
		}
	}
	return &Board{
		Date:  day,
		Todos: sorted,
		Stats: domain.ComputeStats(sorted),
		Banner: Banner{
			LateCount: late,
			Dismissed: dismissed,
			Show:      late > 0 && !dismissed,
		},
	}
}
