package docstore

import (
	"context"
	"sync"
)

// Subscription delivers snapshots of a live query until it is closed.
//
// Delivery is latest-wins: a consumer that falls behind only ever sees the most
// recent snapshot, never a backlog. Close must be called by the owner; cancelling
// the context passed to Subscribe closes it as well.
type Subscription struct {
	snapshots chan Snapshot
	done      chan struct{}
	stop      func()

	mu     sync.Mutex
	closed bool
	err    error
}

func newSubscription(ctx context.Context, stop func()) *Subscription {
	s := &Subscription{
		snapshots: make(chan Snapshot, 1),
		done:      make(chan struct{}),
		stop:      stop,
	}
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	return s
}

// Snapshots is closed once the subscription ends.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.snapshots
}

// Done is closed once the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err reports why the subscription ended, nil after a normal Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.finish(nil)
}

func (s *Subscription) fail(err error) {
	s.finish(err)
}

func (s *Subscription) finish(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	close(s.snapshots)
	close(s.done)
	s.mu.Unlock()

	if s.stop != nil {
		s.stop()
	}
}

func (s *Subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.snapshots:
	default:
	}
	s.snapshots <- snap
}
