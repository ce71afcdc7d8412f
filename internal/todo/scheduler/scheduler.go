package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"leadbook-backend/internal/todo/usecase"
	"leadbook-backend/pkg/logger"
)

// Broadcaster fans an event out to every connected browser
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// RolloverScheduler runs the todo rollover whenever the calendar day changes
type RolloverScheduler struct {
	todoUsecase usecase.TodoUsecase
	events      Broadcaster
	interval    time.Duration
	stopChan    chan struct{}
	log         *logrus.Entry

	mu      sync.Mutex
	lastDay string
}

// NewRolloverScheduler creates a new scheduler
func NewRolloverScheduler(todoUsecase usecase.TodoUsecase, events Broadcaster, interval time.Duration) *RolloverScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RolloverScheduler{
		todoUsecase: todoUsecase,
		events:      events,
		interval:    interval,
		stopChan:    make(chan struct{}),
		log:         logger.For("rollover"),
	}
}

// Start runs a check immediately, then on every tick
func (s *RolloverScheduler) Start() {
	s.log.Infof("[RolloverScheduler] Starting todo rollover scheduler (interval: %s)", s.interval)

	go func() {
		s.Check(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Check(context.Background())
			case <-s.stopChan:
				s.log.Info("[RolloverScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *RolloverScheduler) Stop() {
	close(s.stopChan)
}

// Check rolls over once per calendar day. A failed run leaves the day
// unmarked so the next tick retries. Returns whether a rollover ran.
func (s *RolloverScheduler) Check(ctx context.Context) bool {
	day := s.todoUsecase.Day()

	s.mu.Lock()
	defer s.mu.Unlock()
	if day == s.lastDay {
		return false
	}

	result, err := s.todoUsecase.Rollover(ctx)
	if err != nil {
		s.log.WithError(err).Error("[RolloverScheduler] Failed to rollover late tasks")
		s.broadcast("rollover_failed", map[string]interface{}{
			"error": "Failed to rollover late tasks",
			"date":  day,
		})
		return false
	}

	s.lastDay = day
	if result.Count > 0 {
		s.broadcast("todos_rolled_over", result)
	}
	return true
}

func (s *RolloverScheduler) broadcast(eventType string, payload interface{}) {
	if s.events != nil {
		s.events.Broadcast(eventType, payload)
	}
}
