package usecase

import (
	"errors"
	"sync"
	"time"

	"leadbook-backend/internal/todo/repository"
	"leadbook-backend/pkg/docstore"
)

// dayCheckInterval is how often an open feed looks for a new day.
var dayCheckInterval = time.Minute

var errFeedClosed = errors.New("todo feed closed")

// Feed delivers a fresh Board every time the day's todos change.
// When the day turns over it moves its subscription to the new day's list.
type Feed struct {
	subscribe func(day string) (*docstore.Subscription, error)
	today     func() string
	dismissed func(day string) bool
	check     time.Duration

	mu     sync.Mutex
	sub    *docstore.Subscription
	day    string
	closed bool
	err    error
}

// Next blocks until the next snapshot. It returns false once the feed is closed.
func (f *Feed) Next() (*Board, bool) {
	ticker := time.NewTicker(f.check)
	defer ticker.Stop()

	for {
		f.mu.Lock()
		sub, day := f.sub, f.day
		f.mu.Unlock()

		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return nil, false
			}
			return NewBoard(day, repository.FromDocuments(snap.Documents), f.dismissed(day)), true
		case <-ticker.C:
			if today := f.today(); today != day {
				if err := f.moveTo(today); err != nil {
					return nil, false
				}
			}
		}
	}
}

// moveTo swaps the subscription over to day. The new subscription's initial
// snapshot is what the next loop of Next returns.
func (f *Feed) moveTo(day string) error {
	next, err := f.subscribe(day)
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		if next != nil {
			next.Close()
		}
		return errFeedClosed
	}
	prev := f.sub
	if err != nil {
		f.closed = true
		f.err = err
		f.mu.Unlock()
		prev.Close()
		return err
	}
	f.sub, f.day = next, day
	f.mu.Unlock()
	prev.Close()
	return nil
}

// Err reports why the feed ended, nil after a normal close.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return f.sub.Err()
}

// Close stops the underlying subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	sub := f.sub
	f.mu.Unlock()
	sub.Close()
}
