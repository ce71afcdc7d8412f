package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/pkg/docstore"
)

// Collection is the document store collection holding leads.
const Collection = "leads"

// legacyAccountField is where older clients stored the owning account.
const legacyAccountField = "fiverr"

// docstoreLeadRepository implements LeadRepository on a document store
type docstoreLeadRepository struct {
	store docstore.Store
}

// NewLeadRepository creates a new document store backed LeadRepository
func NewLeadRepository(store docstore.Store) LeadRepository {
	return &docstoreLeadRepository{store: store}
}

func (r *docstoreLeadRepository) Create(ctx context.Context, lead *domain.Lead) (string, error) {
	fields := map[string]interface{}{
		"fullName":  lead.FullName,
		"cell":      lead.Cell,
		"queryType": lead.QueryType,
		"account":   lead.Account,
		"brand":     lead.Brand,
		"status":    string(lead.Status),
		"comments":  encodeComments(lead.Comments),
		"activity":  encodeActivity(lead.Activity),
		"notified":  false,
		"createdAt": docstore.ServerTimestamp,
		"updatedAt": docstore.ServerTimestamp,
	}
	if lead.HasFollowUp() {
		fields["followUpAt"] = *lead.FollowUpAt
	}

	id, err := r.store.Create(ctx, Collection, fields)
	if err != nil {
		return "", fmt.Errorf("create lead: %w", err)
	}
	return id, nil
}

func (r *docstoreLeadRepository) FindByID(ctx context.Context, id string) (*domain.Lead, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	lead := FromDocument(*doc)
	return &lead, nil
}

func (r *docstoreLeadRepository) FindAll(ctx context.Context) ([]domain.Lead, error) {
	docs, err := r.store.Query(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	return FromDocuments(docs), nil
}

func (r *docstoreLeadRepository) Subscribe(ctx context.Context) (*docstore.Subscription, error) {
	return r.store.Subscribe(ctx, Collection)
}

func (r *docstoreLeadRepository) UpdateDetails(ctx context.Context, id string, d Details, entry domain.Activity) error {
	return r.update(ctx, id,
		docstore.Update{Field: "fullName", Value: d.FullName},
		docstore.Update{Field: "cell", Value: d.Cell},
		docstore.Update{Field: "queryType", Value: d.QueryType},
		docstore.Update{Field: "account", Value: d.Account},
		docstore.Update{Field: "brand", Value: d.Brand},
		docstore.Update{Field: "status", Value: string(d.Status)},
		appendActivity(entry),
	)
}

func (r *docstoreLeadRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, entry domain.Activity) error {
	return r.update(ctx, id,
		docstore.Update{Field: "status", Value: string(status)},
		appendActivity(entry),
	)
}

func (r *docstoreLeadRepository) AddComment(ctx context.Context, id string, comment domain.Comment, entry domain.Activity) error {
	return r.update(ctx, id,
		docstore.Update{Field: "comments", Value: docstore.ArrayUnion(encodeComment(comment))},
		appendActivity(entry),
	)
}

func (r *docstoreLeadRepository) SetFollowUp(ctx context.Context, id string, at time.Time, entry domain.Activity) error {
	return r.update(ctx, id,
		docstore.Update{Field: "followUpAt", Value: at},
		docstore.Update{Field: "notified", Value: false},
		appendActivity(entry),
	)
}

func (r *docstoreLeadRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}
	return nil
}

func (r *docstoreLeadRepository) FindDueReminders(ctx context.Context, now time.Time) ([]domain.Lead, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Eq("notified", false))
	if err != nil {
		return nil, fmt.Errorf("query pending reminders: %w", err)
	}

	var due []domain.Lead
	for _, lead := range FromDocuments(docs) {
		if lead.HasFollowUp() && !lead.FollowUpAt.After(now) && !lead.Status.Terminal() {
			due = append(due, lead)
		}
	}
	return due, nil
}

func (r *docstoreLeadRepository) MarkNotified(ctx context.Context, id string) error {
	return r.store.Update(ctx, Collection, id, []docstore.Update{{Field: "notified", Value: true}})
}

// update applies the field group together with a fresh updatedAt.
func (r *docstoreLeadRepository) update(ctx context.Context, id string, updates ...docstore.Update) error {
	updates = append(updates, docstore.Update{Field: "updatedAt", Value: docstore.ServerTimestamp})
	if err := r.store.Update(ctx, Collection, id, updates); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func appendActivity(entry domain.Activity) docstore.Update {
	return docstore.Update{Field: "activity", Value: docstore.ArrayUnion(encodeActivityEntry(entry))}
}

func mapNotFound(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrLeadNotFound
	}
	return err
}
