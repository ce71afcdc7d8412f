// Package insight derives health, score, suggested action and priority from a lead.
// Every function is pure: the result depends only on the lead and the supplied time,
// and the lead is never modified.
package insight

import (
	"fmt"
	"math"
	"strings"
	"time"

	"leadbook-backend/internal/lead/domain"
)

const day = 24 * time.Hour

// HealthLabel is the categorical urgency of a lead.
type HealthLabel string

const (
	HealthCompleted  HealthLabel = "Completed"
	HealthNoFollowUp HealthLabel = "No Followup"
	HealthOverdue    HealthLabel = "Overdue"
	HealthSoon       HealthLabel = "Soon"
	HealthHealthy    HealthLabel = "Healthy"
)

// Health pairs the label with its display tokens.
type Health struct {
	Label HealthLabel `json:"label"`
	Color string      `json:"color"`
	Icon  string      `json:"icon"`
}

var healthTokens = map[HealthLabel]Health{
	HealthCompleted:  {Label: HealthCompleted, Color: "#1d4ed8", Icon: "✓"},
	HealthNoFollowUp: {Label: HealthNoFollowUp, Color: "#64748b", Icon: "—"},
	HealthOverdue:    {Label: HealthOverdue, Color: "#b91c1c", Icon: "⚠"},
	HealthSoon:       {Label: HealthSoon, Color: "#c2410c", Icon: "⏰"},
	HealthHealthy:    {Label: HealthHealthy, Color: "#15803d", Icon: "✓"},
}

// Suggested actions, first matching rule wins.
const (
	SuggestCancelled = "This lead is cancelled"
	SuggestCall      = "Call immediately"
	SuggestCatalog   = "Send price + catalog"
	SuggestPortfolio = "Share portfolio + testimonial"
	SuggestSchedule  = "Schedule followup"
	SuggestNurture   = "Nurture with value message"
)

// ClassifyHealth returns the health label of l at now.
func ClassifyHealth(l *domain.Lead, now time.Time) HealthLabel {
	if l.Status.Terminal() {
		return HealthCompleted
	}
	if !l.HasFollowUp() {
		return HealthNoFollowUp
	}
	diffDays := float64(l.FollowUpAt.Sub(now)) / float64(day)
	switch {
	case diffDays < 0:
		return HealthOverdue
	case diffDays <= 2:
		return HealthSoon
	default:
		return HealthHealthy
	}
}

// HealthOf returns the health label with its color and icon.
func HealthOf(l *domain.Lead, now time.Time) Health {
	return healthTokens[ClassifyHealth(l, now)]
}

// Score rates engagement. It is never negative.
func Score(l *domain.Lead, now time.Time) int {
	score := 3 * len(l.Comments)
	switch l.Status {
	case domain.StatusOrderPlaced:
		score += 15
	case domain.StatusStillInTalk:
		score += 8
	case domain.StatusCancelled:
		score -= 10
	}
	if l.HasFollowUp() {
		score += 5
	}
	if ClassifyHealth(l, now) == HealthOverdue {
		score -= 5
	}
	if score < 0 {
		return 0
	}
	return score
}

// Suggestion returns the next action to take on l.
func Suggestion(l *domain.Lead, now time.Time) string {
	switch {
	case l.Status == domain.StatusCancelled:
		return SuggestCancelled
	case ClassifyHealth(l, now) == HealthOverdue:
		return SuggestCall
	case l.Status == domain.StatusPending:
		return SuggestCatalog
	case l.Status == domain.StatusStillInTalk:
		return SuggestPortfolio
	case !l.HasFollowUp():
		return SuggestSchedule
	default:
		return SuggestNurture
	}
}

var statusRank = map[domain.Status]int{
	domain.StatusOrderPlaced:    3,
	domain.StatusStillInTalk:    4,
	domain.StatusPending:        5,
	domain.StatusOrderDelivered: 6,
	domain.StatusCancelled:      7,
}

// PriorityRank orders leads by urgency, 1 being the most urgent.
func PriorityRank(l *domain.Lead, now time.Time) int {
	switch ClassifyHealth(l, now) {
	case HealthOverdue:
		return 1
	case HealthSoon:
		return 2
	}
	if rank, ok := statusRank[l.Status]; ok {
		return rank
	}
	return len(statusRank) + 3
}

// CreatedDate is the creation time, or now when the store has not stamped it yet.
func CreatedDate(l *domain.Lead, now time.Time) time.Time {
	if l.CreatedAt == nil || l.CreatedAt.IsZero() {
		return now
	}
	return *l.CreatedAt
}

// IsNew reports whether the lead was created within the last 24 hours.
func IsNew(l *domain.Lead, now time.Time) bool {
	return now.Sub(CreatedDate(l, now)) < day
}

// DaysUntilFollowUp rounds up the days left before the follow-up. Nil when none is set.
func DaysUntilFollowUp(l *domain.Lead, now time.Time) *int {
	if !l.HasFollowUp() {
		return nil
	}
	days := int(math.Ceil(float64(l.FollowUpAt.Sub(now)) / float64(day)))
	return &days
}

// TimeAgo renders how long ago t was, e.g. "5m ago" or "Yesterday".
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / day)

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("Jan 2")
	}
}

// WhatsAppURL builds the chat deep link for a phone number.
func WhatsAppURL(cell string) string {
	var b strings.Builder
	for _, r := range cell {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "https://wa.me/" + b.String()
}
