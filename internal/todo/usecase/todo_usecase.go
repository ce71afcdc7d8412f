package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leadbook-backend/internal/todo/domain"
	"leadbook-backend/internal/todo/repository"
	"leadbook-backend/pkg/docstore"
	"leadbook-backend/pkg/logger"
)

const noLateTasksMessage = "No unfinished tasks from yesterday"

// todoUsecase implements TodoUsecase interface
type todoUsecase struct {
	todoRepo   repository.TodoRepository
	dismissals repository.DismissalRepository
	now        func() time.Time
	loc        *time.Location
	log        *logrus.Entry
}

// NewTodoUsecase creates a new instance of todoUsecase. Days are computed in loc.
// A nil dismissals repository means banners can never be dismissed.
func NewTodoUsecase(todoRepo repository.TodoRepository, dismissals repository.DismissalRepository, now func() time.Time, loc *time.Location) TodoUsecase {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &todoUsecase{
		todoRepo:   todoRepo,
		dismissals: dismissals,
		now:        now,
		loc:        loc,
		log:        logger.For("todo"),
	}
}

func (u *todoUsecase) Day() string {
	return domain.Day(u.now(), u.loc)
}

func (u *todoUsecase) Today(ctx context.Context, userID string) (*Board, error) {
	day := u.Day()
	todos, err := u.todoRepo.FindByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return NewBoard(day, todos, u.isDismissed(userID, day)), nil
}

func (u *todoUsecase) Add(ctx context.Context, text string) (*domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}

	day := u.Day()
	existing, err := u.todoRepo.FindByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	todo := &domain.Todo{Text: text, Date: day, Order: len(existing)}
	id, err := u.todoRepo.Create(ctx, todo)
	if err != nil {
		u.log.WithError(err).Error("[TodoUsecase] Failed to add task")
		return nil, err
	}
	return u.todoRepo.FindByID(ctx, id)
}

func (u *todoUsecase) Toggle(ctx context.Context, id string) (*domain.Todo, error) {
	todo, err := u.todoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.todoRepo.SetDone(ctx, id, !todo.Done, todo.IsLate); err != nil {
		return nil, err
	}
	return u.todoRepo.FindByID(ctx, id)
}

func (u *todoUsecase) Delete(ctx context.Context, id string) error {
	return u.todoRepo.Delete(ctx, id)
}

func (u *todoUsecase) Rollover(ctx context.Context) (*RolloverResult, error) {
	now := u.now()
	result := &RolloverResult{
		From:  domain.Yesterday(now, u.loc),
		To:    domain.Day(now, u.loc),
		Moved: []domain.Todo{},
	}

	open, err := u.todoRepo.FindIncomplete(ctx, result.From)
	if err != nil {
		return nil, fmt.Errorf("find unfinished todos: %w", err)
	}
	if len(open) == 0 {
		result.Message = noLateTasksMessage
		return result, nil
	}

	if err := u.todoRepo.RollOver(ctx, open, result.To); err != nil {
		return nil, err
	}

	for _, t := range open {
		t.OriginalDate = t.Date
		t.Date = result.To
		t.IsLate = true
		result.Moved = append(result.Moved, t)
	}
	result.Count = len(open)
	result.Message = fmt.Sprintf("%d unfinished task%s from yesterday carried over to today", result.Count, plural(result.Count))

	u.log.WithField("count", result.Count).Infof("[TodoUsecase] Rolled over %s -> %s", result.From, result.To)
	return result, nil
}

func (u *todoUsecase) DismissBanner(ctx context.Context, userID string) error {
	if u.dismissals == nil {
		return nil
	}
	return u.dismissals.Dismiss(userID, u.Day())
}

func (u *todoUsecase) Watch(ctx context.Context, userID string) (*Feed, error) {
	day := u.Day()
	sub, err := u.todoRepo.SubscribeDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return &Feed{
		subscribe: func(day string) (*docstore.Subscription, error) {
			u.log.WithField("day", day).Info("[TodoUsecase] Day changed, following the new list")
			return u.todoRepo.SubscribeDate(ctx, day)
		},
		today:     u.Day,
		dismissed: func(day string) bool { return u.isDismissed(userID, day) },
		check:     dayCheckInterval,
		sub:       sub,
		day:       day,
	}, nil
}

// A failed lookup shows the banner rather than failing the whole board
func (u *todoUsecase) isDismissed(userID, day string) bool {
	if u.dismissals == nil || userID == "" {
		return false
	}
	dismissed, err := u.dismissals.IsDismissed(userID, day)
	if err != nil {
		u.log.WithError(err).Warn("[TodoUsecase] Failed to read banner dismissal")
		return false
	}
	return dismissed
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
