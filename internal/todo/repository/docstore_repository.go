package repository

import (
	"context"
	"errors"
	"fmt"

	"leadbook-backend/internal/todo/domain"
	"leadbook-backend/pkg/docstore"
)

// Collection is the document store collection holding todos.
const Collection = "todos"

// docstoreTodoRepository implements TodoRepository on a document store
type docstoreTodoRepository struct {
	store docstore.Store
}

// NewTodoRepository creates a new document store backed TodoRepository
func NewTodoRepository(store docstore.Store) TodoRepository {
	return &docstoreTodoRepository{store: store}
}

func (r *docstoreTodoRepository) Create(ctx context.Context, todo *domain.Todo) (string, error) {
	id, err := r.store.Create(ctx, Collection, map[string]interface{}{
		"text":      todo.Text,
		"date":      todo.Date,
		"done":      false,
		"isLate":    false,
		"order":     todo.Order,
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("create todo: %w", err)
	}
	return id, nil
}

func (r *docstoreTodoRepository) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	todo := FromDocument(*doc)
	return &todo, nil
}

func (r *docstoreTodoRepository) FindByDate(ctx context.Context, day string) ([]domain.Todo, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Eq("date", day))
	if err != nil {
		return nil, fmt.Errorf("query todos for %s: %w", day, err)
	}
	return FromDocuments(docs), nil
}

func (r *docstoreTodoRepository) FindIncomplete(ctx context.Context, day string) ([]domain.Todo, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Eq("date", day), docstore.Eq("done", false))
	if err != nil {
		return nil, fmt.Errorf("query open todos for %s: %w", day, err)
	}
	return FromDocuments(docs), nil
}

func (r *docstoreTodoRepository) SubscribeDate(ctx context.Context, day string) (*docstore.Subscription, error) {
	return r.store.Subscribe(ctx, Collection, docstore.Eq("date", day))
}

func (r *docstoreTodoRepository) SetDone(ctx context.Context, id string, done, clearLate bool) error {
	updates := []docstore.Update{{Field: "done", Value: done}}
	if clearLate {
		updates = append(updates, docstore.Update{Field: "isLate", Value: false})
	}
	if err := r.store.Update(ctx, Collection, id, updates); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func (r *docstoreTodoRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	return nil
}

func (r *docstoreTodoRepository) RollOver(ctx context.Context, todos []domain.Todo, day string) error {
	if len(todos) == 0 {
		return nil
	}
	batch := r.store.Batch()
	for _, t := range todos {
		batch.Update(Collection, t.ID, []docstore.Update{
			{Field: "date", Value: day},
			{Field: "isLate", Value: true},
			{Field: "originalDate", Value: t.Date},
			{Field: "rolledOverAt", Value: docstore.ServerTimestamp},
		})
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("roll over %d todos: %w", len(todos), err)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrTodoNotFound
	}
	return err
}

// FromDocuments decodes stored todos. Missing fields take their zero values.
func FromDocuments(docs []docstore.Document) []domain.Todo {
	out := make([]domain.Todo, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromDocument(d))
	}
	return out
}

// FromDocument decodes one stored todo.
func FromDocument(doc docstore.Document) domain.Todo {
	return domain.Todo{
		ID:           doc.ID,
		Text:         docstore.String(doc.Data, "text"),
		Date:         docstore.String(doc.Data, "date"),
		Done:         docstore.Bool(doc.Data, "done"),
		IsLate:       docstore.Bool(doc.Data, "isLate"),
		OriginalDate: docstore.String(doc.Data, "originalDate"),
		Order:        docstore.Int(doc.Data, "order"),
		CreatedAt:    docstore.Time(doc.Data, "createdAt"),
		RolledOverAt: docstore.Time(doc.Data, "rolledOverAt"),
	}
}
