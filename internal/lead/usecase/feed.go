package usecase

import (
	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/internal/lead/repository"
	"leadbook-backend/pkg/docstore"
)

// Feed delivers the whole lead set every time it changes.
type Feed struct {
	sub *docstore.Subscription
}

// Next blocks until the next snapshot. It returns false once the feed is closed.
func (f *Feed) Next() ([]domain.Lead, bool) {
	snap, ok := <-f.sub.Snapshots()
	if !ok {
		return nil, false
	}
	return repository.FromDocuments(snap.Documents), true
}

// Done is closed when the feed ends.
func (f *Feed) Done() <-chan struct{} {
	return f.sub.Done()
}

// Err reports why the feed ended, nil after a normal close.
func (f *Feed) Err() error {
	return f.sub.Err()
}

// Close stops the underlying subscription. Safe to call more than once.
func (f *Feed) Close() {
	f.sub.Close()
}
