package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadbook-backend/internal/lead/domain"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func comments(n int) []domain.Comment {
	out := make([]domain.Comment, n)
	for i := range out {
		out[i] = domain.Comment{Text: "note", Date: now}
	}
	return out
}

func TestClassifyHealth(t *testing.T) {
	tests := []struct {
		name   string
		status domain.Status
		follow *time.Time
		want   HealthLabel
	}{
		{"delivered ignores overdue follow-up", domain.StatusOrderDelivered, at(-72 * time.Hour), HealthCompleted},
		{"cancelled ignores follow-up", domain.StatusCancelled, at(time.Hour), HealthCompleted},
		{"no follow-up", domain.StatusPending, nil, HealthNoFollowUp},
		{"past follow-up", domain.StatusStillInTalk, at(-time.Minute), HealthOverdue},
		{"due now", domain.StatusStillInTalk, at(0), HealthSoon},
		{"exactly two days", domain.StatusPending, at(48 * time.Hour), HealthSoon},
		{"just over two days", domain.StatusPending, at(48*time.Hour + time.Second), HealthHealthy},
		{"next week", domain.StatusOrderPlaced, at(7 * 24 * time.Hour), HealthHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &domain.Lead{Status: tt.status, FollowUpAt: tt.follow}
			assert.Equal(t, tt.want, ClassifyHealth(l, now))
		})
	}
}

func TestHealthTokens(t *testing.T) {
	h := HealthOf(&domain.Lead{Status: domain.StatusPending, FollowUpAt: at(-time.Hour)}, now)
	assert.Equal(t, Health{Label: HealthOverdue, Color: "#b91c1c", Icon: "⚠"}, h)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		lead domain.Lead
		want int
	}{
		{"pending without activity", domain.Lead{Status: domain.StatusPending}, 0},
		{"overdue still in talk", domain.Lead{Status: domain.StatusStillInTalk, FollowUpAt: at(-24 * time.Hour), Comments: comments(2)}, 9},
		{"order placed with follow-up", domain.Lead{Status: domain.StatusOrderPlaced, FollowUpAt: at(72 * time.Hour)}, 20},
		{"cancelled clamps to zero", domain.Lead{Status: domain.StatusCancelled, Comments: comments(1)}, 0},
		{"cancelled with overdue follow-up still clamps", domain.Lead{Status: domain.StatusCancelled, FollowUpAt: at(-time.Hour)}, 0},
		{"comments outweigh cancellation", domain.Lead{Status: domain.StatusCancelled, Comments: comments(5)}, 5},
		{"no upper bound", domain.Lead{Status: domain.StatusOrderPlaced, Comments: comments(40)}, 135},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(&tt.lead, now))
		})
	}
}

func TestScoreNeverNegative(t *testing.T) {
	follows := []*time.Time{nil, at(-96 * time.Hour), at(time.Hour), at(96 * time.Hour)}
	for _, status := range domain.Statuses {
		for _, f := range follows {
			for n := 0; n < 3; n++ {
				l := &domain.Lead{Status: status, FollowUpAt: f, Comments: comments(n)}
				assert.GreaterOrEqual(t, Score(l, now), 0)
			}
		}
	}
}

func TestSuggestion(t *testing.T) {
	tests := []struct {
		name string
		lead domain.Lead
		want string
	}{
		{"cancelled first", domain.Lead{Status: domain.StatusCancelled, FollowUpAt: at(-time.Hour)}, SuggestCancelled},
		{"overdue before status rules", domain.Lead{Status: domain.StatusStillInTalk, FollowUpAt: at(-24 * time.Hour)}, SuggestCall},
		{"pending", domain.Lead{Status: domain.StatusPending}, SuggestCatalog},
		{"still in talk", domain.Lead{Status: domain.StatusStillInTalk, FollowUpAt: at(time.Hour)}, SuggestPortfolio},
		{"order placed without follow-up", domain.Lead{Status: domain.StatusOrderPlaced}, SuggestSchedule},
		{"order placed with follow-up", domain.Lead{Status: domain.StatusOrderPlaced, FollowUpAt: at(96 * time.Hour)}, SuggestNurture},
		{"delivered with overdue follow-up", domain.Lead{Status: domain.StatusOrderDelivered, FollowUpAt: at(-time.Hour)}, SuggestNurture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggestion(&tt.lead, now))
		})
	}
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 1, PriorityRank(&domain.Lead{Status: domain.StatusPending, FollowUpAt: at(-time.Hour)}, now))
	assert.Equal(t, 2, PriorityRank(&domain.Lead{Status: domain.StatusPending, FollowUpAt: at(time.Hour)}, now))
	assert.Equal(t, 3, PriorityRank(&domain.Lead{Status: domain.StatusOrderPlaced}, now))
	assert.Equal(t, 4, PriorityRank(&domain.Lead{Status: domain.StatusStillInTalk}, now))
	assert.Equal(t, 5, PriorityRank(&domain.Lead{Status: domain.StatusPending, FollowUpAt: at(96 * time.Hour)}, now))
	assert.Equal(t, 6, PriorityRank(&domain.Lead{Status: domain.StatusOrderDelivered, FollowUpAt: at(-time.Hour)}, now))
	assert.Equal(t, 7, PriorityRank(&domain.Lead{Status: domain.StatusCancelled}, now))
}

func TestExampleScenarios(t *testing.T) {
	t.Run("fresh pending lead", func(t *testing.T) {
		d := Derive(&domain.Lead{Status: domain.StatusPending}, now)
		assert.Equal(t, 0, d.Score)
		assert.Equal(t, SuggestCatalog, d.Suggestion)
		assert.Equal(t, HealthNoFollowUp, d.Health.Label)
	})

	t.Run("overdue lead in talk", func(t *testing.T) {
		d := Derive(&domain.Lead{Status: domain.StatusStillInTalk, FollowUpAt: at(-24 * time.Hour), Comments: comments(2)}, now)
		assert.Equal(t, HealthOverdue, d.Health.Label)
		assert.Equal(t, 9, d.Score)
		assert.Equal(t, SuggestCall, d.Suggestion)
	})
}

func TestAnnotateDoesNotMutate(t *testing.T) {
	follow := now.Add(-time.Hour)
	l := domain.Lead{ID: "a", Status: domain.StatusPending, FollowUpAt: &follow, Comments: comments(1)}

	a := Annotate(l, now)

	assert.Equal(t, "a", a.ID)
	assert.Equal(t, follow, *l.FollowUpAt)
	assert.Len(t, l.Comments, 1)
	assert.Equal(t, domain.StatusPending, l.Status)
	assert.Equal(t, 1, a.Priority)
}

func TestCreatedDateFallsBackToNow(t *testing.T) {
	d := Derive(&domain.Lead{Status: domain.StatusPending}, now)
	assert.Equal(t, now, d.CreatedDate)
	assert.True(t, d.IsNew)
	assert.Equal(t, "Just now", d.TimeAgo)

	created := now.Add(-30 * time.Hour)
	d = Derive(&domain.Lead{Status: domain.StatusPending, CreatedAt: &created}, now)
	assert.Equal(t, created, d.CreatedDate)
	assert.False(t, d.IsNew)
}

func TestDaysUntilFollowUp(t *testing.T) {
	assert.Nil(t, DaysUntilFollowUp(&domain.Lead{}, now))

	got := DaysUntilFollowUp(&domain.Lead{FollowUpAt: at(25 * time.Hour)}, now)
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)

	got = DaysUntilFollowUp(&domain.Lead{FollowUpAt: at(-25 * time.Hour)}, now)
	require.NotNil(t, got)
	assert.Equal(t, -1, *got)
}

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{30 * time.Hour, "Yesterday"},
		{4 * 24 * time.Hour, "4d ago"},
		{9 * 24 * time.Hour, "Mar 1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now))
	}
}

func TestWhatsAppURL(t *testing.T) {
	assert.Equal(t, "https://wa.me/19876543210", WhatsAppURL("+1 (987) 654-3210"))
	assert.Equal(t, "", WhatsAppURL("n/a"))
}
