// Package pipeline turns the live lead set into the page the UI shows:
// annotate, filter, search, sort, number and paginate.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"leadbook-backend/internal/catalog"
	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/internal/lead/insight"
)

// Row is an annotated lead with its 1-based position in the filtered, sorted result.
type Row struct {
	insight.AnnotatedLead
	Sequence int `json:"sequence"`
}

// Result is one rendered page.
type Result struct {
	Items      []Row          `json:"items"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	Page       int            `json:"page"`
	Pages      []PageItem     `json:"pages"`
	TabCounts  map[string]int `json:"tab_counts"`
}

// Run applies p to leads at now. It does not modify leads.
func Run(leads []domain.Lead, p Params, now time.Time) Result {
	rows := Process(leads, p, now)

	totalPages := (len(rows) + catalog.PageSize - 1) / catalog.PageSize
	page := p.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * catalog.PageSize
	end := start + catalog.PageSize
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	return Result{
		Items:      rows[start:end],
		Total:      len(rows),
		TotalPages: totalPages,
		Page:       page,
		Pages:      VisiblePages(page, totalPages),
		TabCounts:  TabCounts(leads),
	}
}

// Process returns every matching row, sorted and numbered, without pagination.
func Process(leads []domain.Lead, p Params, now time.Time) []Row {
	annotated := insight.AnnotateAll(leads, now)

	filtered := make([]insight.AnnotatedLead, 0, len(annotated))
	for _, a := range annotated {
		if matchTab(a, p.Tab) && matchFilters(a, p.Filters, now) && matchSearch(a, p.Search) {
			filtered = append(filtered, a)
		}
	}

	sortLeads(filtered, p.Sort, p.Order)

	rows := make([]Row, len(filtered))
	for i, a := range filtered {
		rows[i] = Row{AnnotatedLead: a, Sequence: i + 1}
	}
	return rows
}

// TabCounts counts the full lead set per tab, ignoring every filter.
func TabCounts(leads []domain.Lead) map[string]int {
	counts := make(map[string]int, len(domain.Statuses)+2)
	counts[TabAll] = len(leads)
	counts[TabActive] = 0
	for _, s := range domain.Statuses {
		counts[string(s)] = 0
	}
	for _, l := range leads {
		counts[string(l.Status)]++
		if l.Status.Active() {
			counts[TabActive]++
		}
	}
	return counts
}

func matchTab(a insight.AnnotatedLead, tab string) bool {
	switch tab {
	case "", TabAll:
		return true
	case TabActive:
		return a.Status.Active()
	default:
		return string(a.Status) == tab
	}
}

func matchFilters(a insight.AnnotatedLead, f Filters, now time.Time) bool {
	if !passThrough(f.Account) && a.Account != f.Account {
		return false
	}
	if !passThrough(f.QueryType) && a.QueryType != f.QueryType {
		return false
	}
	switch f.Priority {
	case PriorityOverdue:
		if a.Health.Label != insight.HealthOverdue {
			return false
		}
	case PrioritySoon:
		if a.Health.Label != insight.HealthSoon {
			return false
		}
	}
	if !passThrough(f.DateRange) {
		diffDays := int(now.Sub(a.CreatedDate) / (24 * time.Hour))
		switch f.DateRange {
		case RangeToday:
			return diffDays <= 0
		case RangeWeek:
			return diffDays <= 7
		case RangeMonth:
			return diffDays <= 30
		}
	}
	return true
}

// matchSearch folds case on text fields. The phone number is matched raw.
func matchSearch(a insight.AnnotatedLead, search string) bool {
	if strings.TrimSpace(search) == "" {
		return true
	}
	lower := strings.ToLower(search)
	if strings.Contains(strings.ToLower(a.FullName), lower) ||
		strings.Contains(a.Cell, search) ||
		strings.Contains(strings.ToLower(a.Brand), lower) ||
		strings.Contains(strings.ToLower(a.QueryType), lower) {
		return true
	}
	for _, c := range a.Comments {
		if strings.Contains(strings.ToLower(c.Text), lower) {
			return true
		}
	}
	return false
}

func sortLeads(leads []insight.AnnotatedLead, key SortKey, order Order) {
	coll := collate.New(language.English)

	compare := func(a, b *insight.AnnotatedLead) int {
		switch key {
		case SortPriority:
			return compareInt(int64(a.Priority), int64(b.Priority))
		case SortStatus:
			return coll.CompareString(string(a.Status), string(b.Status))
		case SortFollowUp:
			return compareInt(followUpMillis(a), followUpMillis(b))
		case SortName:
			return coll.CompareString(strings.ToLower(a.FullName), strings.ToLower(b.FullName))
		case SortScore:
			return compareInt(int64(a.Score), int64(b.Score))
		default:
			return compareInt(a.CreatedDate.UnixMilli(), b.CreatedDate.UnixMilli())
		}
	}

	sort.SliceStable(leads, func(i, j int) bool {
		c := compare(&leads[i], &leads[j])
		if order == Asc {
			return c < 0
		}
		return c > 0
	})
}

// followUpMillis sorts leads without a follow-up as the epoch.
func followUpMillis(a *insight.AnnotatedLead) int64 {
	if !a.HasFollowUp() {
		return 0
	}
	return a.FollowUpAt.UnixMilli()
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
