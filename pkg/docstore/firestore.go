package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"leadbook-backend/pkg/logger"
)

// FirestoreStore implements Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore opens a Firestore client on an initialized Firebase app.
func NewFirestoreStore(ctx context.Context, app *firebase.App) (*FirestoreStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firestore client: %w", err)
	}

	logger.For("docstore").Info("[Firestore] Client initialized")
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	data := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		data[k] = toFirestoreValue(v)
	}
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, updates []Update) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, toFirestoreUpdates(updates))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	snaps, err := s.query(collection, filters).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return toDocuments(snaps), nil
}

func (s *FirestoreStore) Subscribe(ctx context.Context, collection string, filters ...Filter) (*Subscription, error) {
	listenCtx, cancel := context.WithCancel(ctx)
	it := s.query(collection, filters).Snapshots(listenCtx)

	sub := newSubscription(listenCtx, func() {
		cancel()
		it.Stop()
	})

	go func() {
		for {
			qs, err := it.Next()
			if err != nil {
				if listenCtx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					sub.Close()
					return
				}
				logger.For("docstore").Errorf("[Firestore] Snapshot listener on %s failed: %v", collection, err)
				sub.fail(fmt.Errorf("listen %s: %w", collection, err))
				return
			}
			snaps, err := qs.Documents.GetAll()
			if err != nil {
				sub.fail(fmt.Errorf("read snapshot of %s: %w", collection, err))
				return
			}
			sub.deliver(Snapshot{Documents: toDocuments(snaps), ReadAt: qs.ReadTime})
		}
	}()

	return sub, nil
}

func (s *FirestoreStore) Batch() Batch {
	return &firestoreBatch{client: s.client}
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) query(collection string, filters []Filter) firestore.Query {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	return q
}

type firestoreWrite struct {
	collection string
	id         string
	updates    []Update
}

type firestoreBatch struct {
	client *firestore.Client
	writes []firestoreWrite
}

func (b *firestoreBatch) Update(collection, id string, updates []Update) {
	b.writes = append(b.writes, firestoreWrite{collection: collection, id: id, updates: updates})
}

// Commit applies every update inside one transaction.
func (b *firestoreBatch) Commit(ctx context.Context) error {
	if len(b.writes) == 0 {
		return nil
	}
	return b.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, w := range b.writes {
			ref := b.client.Collection(w.collection).Doc(w.id)
			if err := tx.Update(ref, toFirestoreUpdates(w.updates)); err != nil {
				return fmt.Errorf("batch update %s/%s: %w", w.collection, w.id, err)
			}
		}
		return nil
	})
}

func toFirestoreUpdates(updates []Update) []firestore.Update {
	out := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		out = append(out, firestore.Update{Path: u.Field, Value: toFirestoreValue(u.Value)})
	}
	return out
}

func toFirestoreValue(v interface{}) interface{} {
	switch val := v.(type) {
	case serverTimestamp:
		return firestore.ServerTimestamp
	case arrayUnion:
		return firestore.ArrayUnion(val.values...)
	}
	return v
}

func toDocuments(snaps []*firestore.DocumentSnapshot) []Document {
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs
}
