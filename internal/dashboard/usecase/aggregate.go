package usecase

import (
	"math"
	"sort"
	"time"

	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/internal/lead/insight"
)

const (
	followUpListLimit = 5
	urgentPreviewSize = 3
)

// OverdueLead is a missed follow-up with how many whole days ago it was due
type OverdueLead struct {
	insight.AnnotatedLead
	DaysOverdue int `json:"days_overdue"`
}

// Metrics are the header counters
type Metrics struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Urgent    int `json:"urgent"`
	Converted int `json:"converted"`
}

// UrgentPreview is the short list shown in the attention banner
type UrgentPreview struct {
	Leads []OverdueLead `json:"leads"`
	More  int           `json:"more"`
}

// Aggregate is everything the dashboard derives from the lead set
type Aggregate struct {
	TodaysFollowUps  []insight.AnnotatedLead `json:"todays_follow_ups"`
	OverdueFollowUps []OverdueLead           `json:"overdue_follow_ups"`
	Urgent           []insight.AnnotatedLead `json:"urgent"`
	UrgentPreview    UrgentPreview           `json:"urgent_preview"`
	Metrics          Metrics                 `json:"metrics"`
}

// Stage is one column of the pipeline board
type Stage struct {
	Status domain.Status           `json:"status"`
	Count  int                     `json:"count"`
	Leads  []insight.AnnotatedLead `json:"leads"`
}

// AggregateLeads computes the dashboard lists and counters. Calendar days are taken in loc.
func AggregateLeads(leads []domain.Lead, now time.Time, loc *time.Location) Aggregate {
	annotated := insight.AnnotateAll(leads, now)
	startOfToday := startOfDay(now, loc)

	agg := Aggregate{
		TodaysFollowUps:  []insight.AnnotatedLead{},
		OverdueFollowUps: []OverdueLead{},
		Urgent:           []insight.AnnotatedLead{},
		UrgentPreview:    UrgentPreview{Leads: []OverdueLead{}},
	}

	var overdue []insight.AnnotatedLead
	for _, l := range annotated {
		agg.Metrics.Total++
		if l.Status.Active() {
			agg.Metrics.Active++
		}
		if l.Status.Converted() {
			agg.Metrics.Converted++
		}

		if !l.HasFollowUp() || l.Status == domain.StatusCancelled {
			continue
		}
		if sameDay(*l.FollowUpAt, now, loc) {
			agg.TodaysFollowUps = append(agg.TodaysFollowUps, l)
		} else if l.FollowUpAt.Before(startOfToday) {
			overdue = append(overdue, l)
		}
		if l.Health.Label == insight.HealthOverdue {
			agg.Urgent = append(agg.Urgent, l)
		}
	}

	sortByFollowUp(agg.TodaysFollowUps)
	sortByFollowUp(overdue)
	sortByFollowUp(agg.Urgent)

	agg.TodaysFollowUps = capped(agg.TodaysFollowUps, followUpListLimit)
	for _, l := range capped(overdue, followUpListLimit) {
		agg.OverdueFollowUps = append(agg.OverdueFollowUps, withDaysOverdue(l, now))
	}

	agg.Metrics.Urgent = len(agg.Urgent)
	for _, l := range capped(agg.Urgent, urgentPreviewSize) {
		agg.UrgentPreview.Leads = append(agg.UrgentPreview.Leads, withDaysOverdue(l, now))
	}
	if n := len(agg.Urgent) - urgentPreviewSize; n > 0 {
		agg.UrgentPreview.More = n
	}
	return agg
}

// PipelineStages groups non-cancelled leads by status, newest first within a stage.
func PipelineStages(leads []domain.Lead, now time.Time) []Stage {
	annotated := insight.AnnotateAll(leads, now)
	sort.SliceStable(annotated, func(i, j int) bool {
		return annotated[i].CreatedDate.After(annotated[j].CreatedDate)
	})

	stages := make([]Stage, 0, len(domain.Statuses))
	index := make(map[domain.Status]int)
	for _, s := range domain.Statuses {
		if s == domain.StatusCancelled {
			continue
		}
		index[s] = len(stages)
		stages = append(stages, Stage{Status: s, Leads: []insight.AnnotatedLead{}})
	}
	for _, l := range annotated {
		i, ok := index[l.Status]
		if !ok {
			continue
		}
		stages[i].Leads = append(stages[i].Leads, l)
		stages[i].Count++
	}
	return stages
}

func withDaysOverdue(l insight.AnnotatedLead, now time.Time) OverdueLead {
	days := int(math.Floor(now.Sub(*l.FollowUpAt).Hours() / 24))
	return OverdueLead{AnnotatedLead: l, DaysOverdue: days}
}

func sortByFollowUp(leads []insight.AnnotatedLead) {
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].FollowUpAt.Before(*leads[j].FollowUpAt)
	})
}

func capped[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
