package insight

import (
	"time"

	"leadbook-backend/internal/lead/domain"
)

// Derived holds every field computed from a lead at a point in time.
type Derived struct {
	Health            Health    `json:"health"`
	Score             int       `json:"score"`
	Suggestion        string    `json:"suggestion"`
	Priority          int       `json:"priority"`
	CreatedDate       time.Time `json:"created_date"`
	IsNew             bool      `json:"is_new"`
	TimeAgo           string    `json:"time_ago"`
	DaysUntilFollowUp *int      `json:"days_until_follow_up"`
	WhatsAppURL       string    `json:"whatsapp_url,omitempty"`
}

// AnnotatedLead is a read-only projection of a lead plus its derived fields.
type AnnotatedLead struct {
	domain.Lead
	Derived
}

// Derive computes the derived fields of l at now.
func Derive(l *domain.Lead, now time.Time) Derived {
	created := CreatedDate(l, now)
	return Derived{
		Health:            HealthOf(l, now),
		Score:             Score(l, now),
		Suggestion:        Suggestion(l, now),
		Priority:          PriorityRank(l, now),
		CreatedDate:       created,
		IsNew:             IsNew(l, now),
		TimeAgo:           TimeAgo(created, now),
		DaysUntilFollowUp: DaysUntilFollowUp(l, now),
		WhatsAppURL:       WhatsAppURL(l.Cell),
	}
}

// Annotate wraps l with its derived fields.
func Annotate(l domain.Lead, now time.Time) AnnotatedLead {
	return AnnotatedLead{Lead: l, Derived: Derive(&l, now)}
}

// AnnotateAll annotates every lead in leads.
func AnnotateAll(leads []domain.Lead, now time.Time) []AnnotatedLead {
	out := make([]AnnotatedLead, len(leads))
	for i := range leads {
		out[i] = Annotate(leads[i], now)
	}
	return out
}
