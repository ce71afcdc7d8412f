package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"leadbook-backend/internal/lead/domain"
	todousecase "leadbook-backend/internal/todo/usecase"
	"leadbook-backend/pkg/logger"
)

// LeadSource provides the full lead set
type LeadSource interface {
	Leads(ctx context.Context) ([]domain.Lead, error)
}

// TodoSource provides today's todo board
type TodoSource interface {
	Today(ctx context.Context, userID string) (*todousecase.Board, error)
}

// DashboardUsecase defines the interface for the dashboard views
type DashboardUsecase interface {
	// Summary returns the lead aggregates and today's todo board.
	// A todo failure is reported in TodosError and never fails the summary.
	Summary(ctx context.Context, userID string) (*Summary, error)

	// Pipeline returns non-cancelled leads grouped by stage
	Pipeline(ctx context.Context) ([]Stage, error)
}

// Summary is the dashboard payload
type Summary struct {
	Aggregate
	Todos            *todousecase.Board `json:"todos,omitempty"`
	TodosError       string             `json:"todos_error,omitempty"`
	TodosErrorDetail string             `json:"todos_error_detail,omitempty"`
}

const todosUnavailable = "Todo board unavailable"

// dashboardUsecase implements DashboardUsecase interface
type dashboardUsecase struct {
	leads LeadSource
	todos TodoSource
	now   func() time.Time
	loc   *time.Location
	log   *logrus.Entry
}

// NewDashboardUsecase creates a new instance of dashboardUsecase
func NewDashboardUsecase(leads LeadSource, todos TodoSource, now func() time.Time, loc *time.Location) DashboardUsecase {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &dashboardUsecase{
		leads: leads,
		todos: todos,
		now:   now,
		loc:   loc,
		log:   logger.For("dashboard"),
	}
}

func (u *dashboardUsecase) Summary(ctx context.Context, userID string) (*Summary, error) {
	var (
		leads   []domain.Lead
		board   *todousecase.Board
		todoErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = u.leads.Leads(gctx)
		return err
	})
	if u.todos != nil {
		// never returns an error so the lead half is unaffected
		g.Go(func() error {
			board, todoErr = u.loadTodos(gctx, userID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Aggregate: AggregateLeads(leads, u.now(), u.loc)}
	if todoErr != nil {
		u.log.WithError(todoErr).Error("[DashboardUsecase] Todo board failed")
		summary.TodosError = todosUnavailable
		summary.TodosErrorDetail = todoErr.Error()
	} else {
		summary.Todos = board
	}
	return summary, nil
}

func (u *dashboardUsecase) Pipeline(ctx context.Context) ([]Stage, error) {
	leads, err := u.leads.Leads(ctx)
	if err != nil {
		return nil, err
	}
	return PipelineStages(leads, u.now()), nil
}

func (u *dashboardUsecase) loadTodos(ctx context.Context, userID string) (board *todousecase.Board, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("todo board panicked: %v", r)
		}
	}()
	return u.todos.Today(ctx, userID)
}
