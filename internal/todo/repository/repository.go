package repository

import (
	"context"

	"leadbook-backend/internal/todo/domain"
	"leadbook-backend/pkg/docstore"
)

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Create stores a new todo and returns its id
	Create(ctx context.Context, todo *domain.Todo) (string, error)

	FindByID(ctx context.Context, id string) (*domain.Todo, error)

	// FindByDate returns every todo dated day
	FindByDate(ctx context.Context, day string) ([]domain.Todo, error)

	// FindIncomplete returns the open todos dated day
	FindIncomplete(ctx context.Context, day string) ([]domain.Todo, error)

	// SubscribeDate opens a live query over the todos dated day
	SubscribeDate(ctx context.Context, day string) (*docstore.Subscription, error)

	// SetDone sets done and, when clearLate is true, drops the late flag in the same write
	SetDone(ctx context.Context, id string, done, clearLate bool) error

	Delete(ctx context.Context, id string) error

	// RollOver moves todos onto day in one atomic batch, marking each late
	// and remembering the date it came from
	RollOver(ctx context.Context, todos []domain.Todo, day string) error
}

// DismissalRepository persists late-banner acknowledgements
type DismissalRepository interface {
	Dismiss(userID, day string) error
	IsDismissed(userID, day string) (bool, error)
}
