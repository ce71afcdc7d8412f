package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	authdomain "leadbook-backend/internal/auth/domain"
	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/internal/lead/repository"
	"leadbook-backend/pkg/fcm"
	"leadbook-backend/pkg/logger"
)

// TokenStore lists and prunes registered devices
type TokenStore interface {
	GetAllTokens() ([]authdomain.FCMToken, error)
	DeleteToken(token string) error
}

// Notifier delivers a push notification to device tokens and returns the tokens that failed
type Notifier interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]string, error)
}

// Broadcaster fans an event out to every connected browser
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// FollowUpReminderScheduler pushes a reminder once a lead's follow-up comes due
type FollowUpReminderScheduler struct {
	leadRepo repository.LeadRepository
	tokens   TokenStore
	notifier Notifier
	events   Broadcaster
	interval time.Duration
	now      func() time.Time
	stopChan chan struct{}
	log      *logrus.Entry
}

// NewFollowUpReminderScheduler creates a new scheduler. A nil notifier disables it.
func NewFollowUpReminderScheduler(
	leadRepo repository.LeadRepository,
	tokens TokenStore,
	notifier Notifier,
	events Broadcaster,
	interval time.Duration,
) *FollowUpReminderScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &FollowUpReminderScheduler{
		leadRepo: leadRepo,
		tokens:   tokens,
		notifier: notifier,
		events:   events,
		interval: interval,
		now:      time.Now,
		stopChan: make(chan struct{}),
		log:      logger.For("reminder"),
	}
}

// Start begins the scheduler loop
func (s *FollowUpReminderScheduler) Start() {
	if s.notifier == nil {
		s.log.Info("[ReminderScheduler] FCM client not available, scheduler disabled")
		return
	}

	s.log.Infof("[ReminderScheduler] Starting follow-up reminder scheduler (interval: %s)", s.interval)

	go func() {
		s.CheckAndSendReminders(context.Background())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.CheckAndSendReminders(context.Background())
			case <-s.stopChan:
				s.log.Info("[ReminderScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *FollowUpReminderScheduler) Stop() {
	close(s.stopChan)
}

// CheckAndSendReminders sends one notification per due lead and marks it notified
func (s *FollowUpReminderScheduler) CheckAndSendReminders(ctx context.Context) int {
	leads, err := s.leadRepo.FindDueReminders(ctx, s.now())
	if err != nil {
		s.log.WithError(err).Error("[ReminderScheduler] Error finding due follow-ups")
		return 0
	}
	if len(leads) == 0 {
		return 0
	}

	s.log.Infof("[ReminderScheduler] Found %d leads with due follow-ups", len(leads))

	tokens, err := s.tokens.GetAllTokens()
	if err != nil {
		s.log.WithError(err).Error("[ReminderScheduler] Error loading FCM tokens")
		return 0
	}
	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	sent := 0
	for _, lead := range leads {
		if len(tokenStrings) > 0 {
			failed, err := s.notifier.SendToDevices(ctx, tokenStrings, buildNotification(lead))
			if err != nil {
				s.log.WithError(err).WithField("lead_id", lead.ID).Error("[ReminderScheduler] Error sending reminder")
			} else {
				sent++
				tokenStrings = s.prune(tokenStrings, failed)
			}
		}

		if s.events != nil {
			s.events.Broadcast("follow_up_due", map[string]interface{}{"lead_id": lead.ID, "full_name": lead.FullName})
		}

		// Marked even when delivery fails so a broken device never causes a reminder storm
		if err := s.leadRepo.MarkNotified(ctx, lead.ID); err != nil {
			s.log.WithError(err).WithField("lead_id", lead.ID).Error("[ReminderScheduler] Error marking lead notified")
		}
	}
	return sent
}

func (s *FollowUpReminderScheduler) prune(tokens, failed []string) []string {
	if len(failed) == 0 {
		return tokens
	}
	bad := make(map[string]bool, len(failed))
	for _, t := range failed {
		bad[t] = true
		if err := s.tokens.DeleteToken(t); err != nil {
			s.log.WithError(err).Warn("[ReminderScheduler] Error deleting stale FCM token")
		}
	}
	kept := tokens[:0]
	for _, t := range tokens {
		if !bad[t] {
			kept = append(kept, t)
		}
	}
	return kept
}

func buildNotification(lead domain.Lead) fcm.NotificationData {
	body := fmt.Sprintf("%s · %s", lead.Status, lead.QueryType)
	if lead.HasFollowUp() {
		body = fmt.Sprintf("%s\nDue: %s", body, lead.FollowUpAt.Format("02 Jan 2006 15:04"))
	}
	return fcm.NotificationData{
		Title: "Follow up: " + lead.FullName,
		Body:  body,
		Data: map[string]string{
			"type":         "follow_up_reminder",
			"lead_id":      lead.ID,
			"cell":         lead.Cell,
			"click_action": "/leads/" + lead.ID,
		},
		ClickAction: "/leads/" + lead.ID,
	}
}
