package repository

import (
	"context"
	"time"

	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/pkg/docstore"
)

// LeadRepository defines the interface for lead data access
type LeadRepository interface {
	// Create stores a new lead and returns its store-assigned id
	Create(ctx context.Context, lead *domain.Lead) (string, error)

	FindByID(ctx context.Context, id string) (*domain.Lead, error)

	// FindAll returns the whole leads collection
	FindAll(ctx context.Context) ([]domain.Lead, error)

	// Subscribe opens a live query over the whole collection.
	// Decode snapshots with FromDocuments. The caller must close the subscription.
	Subscribe(ctx context.Context) (*docstore.Subscription, error)

	UpdateDetails(ctx context.Context, id string, details Details, entry domain.Activity) error
	UpdateStatus(ctx context.Context, id string, status domain.Status, entry domain.Activity) error
	AddComment(ctx context.Context, id string, comment domain.Comment, entry domain.Activity) error

	// SetFollowUp schedules the follow-up and re-arms the reminder
	SetFollowUp(ctx context.Context, id string, at time.Time, entry domain.Activity) error

	Delete(ctx context.Context, id string) error

	// FindDueReminders returns non-terminal leads whose follow-up is at or before now
	// and whose reminder has not been sent
	FindDueReminders(ctx context.Context, now time.Time) ([]domain.Lead, error)

	MarkNotified(ctx context.Context, id string) error
}

// Details are the fields the edit form can change.
type Details struct {
	FullName  string
	Cell      string
	QueryType string
	Account   string
	Brand     string
	Status    domain.Status
}
