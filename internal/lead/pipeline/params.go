package pipeline

import (
	"strconv"
	"strings"

	"leadbook-backend/internal/lead/domain"
)

// Tab selectors besides the single-status tabs.
const (
	TabActive = "active"
	TabAll    = "all"
)

// Sentinels that disable a secondary filter.
const (
	Any  = "all"
	None = "none"
)

// Priority buckets.
const (
	PriorityOverdue = "overdue"
	PrioritySoon    = "soon"
)

// Creation date ranges.
const (
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// SortKey selects the comparator.
type SortKey string

const (
	SortPriority SortKey = "priority"
	SortStatus   SortKey = "status"
	SortCreated  SortKey = "created"
	SortFollowUp SortKey = "followUp"
	SortName     SortKey = "name"
	SortScore    SortKey = "score"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Filters are the secondary predicates. Empty values behave like Any.
type Filters struct {
	Account   string `json:"account"`
	QueryType string `json:"query_type"`
	Priority  string `json:"priority"`
	DateRange string `json:"date_range"`
}

// Params is everything the UI controls.
type Params struct {
	Tab     string  `json:"tab"`
	Filters Filters `json:"filters"`
	Search  string  `json:"search"`
	Sort    SortKey `json:"sort"`
	Order   Order   `json:"order"`
	Page    int     `json:"page"`
}

// DefaultParams shows the active tab, newest first.
func DefaultParams() Params {
	return Params{
		Tab:     TabActive,
		Filters: Filters{Account: Any, QueryType: Any, Priority: Any, DateRange: Any},
		Sort:    SortCreated,
		Order:   Desc,
		Page:    1,
	}
}

// ParseParams reads params from string values such as URL query parameters.
// Unknown values fall back to the defaults.
func ParseParams(get func(key string) string) Params {
	p := DefaultParams()

	if tab := get("tab"); tab == TabAll || tab == TabActive || domain.Status(tab).Valid() {
		p.Tab = tab
	}
	p.Filters.Account = orAny(get("account"))
	p.Filters.QueryType = orAny(get("query_type"))
	switch v := get("priority"); v {
	case PriorityOverdue, PrioritySoon:
		p.Filters.Priority = v
	}
	switch v := get("date_range"); v {
	case RangeToday, RangeWeek, RangeMonth:
		p.Filters.DateRange = v
	}
	p.Search = get("search")
	if key := SortKey(get("sort")); key.Valid() {
		p.Sort = key
	}
	if order := Order(strings.ToLower(get("order"))); order == Asc || order == Desc {
		p.Order = order
	}
	if page, err := strconv.Atoi(get("page")); err == nil && page > 0 {
		p.Page = page
	}
	return p
}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortPriority, SortStatus, SortCreated, SortFollowUp, SortName, SortScore:
		return true
	}
	return false
}

// sameView reports whether two params select the same rows in the same order.
func sameView(a, b Params) bool {
	return a.Tab == b.Tab && a.Filters == b.Filters && a.Search == b.Search && a.Sort == b.Sort && a.Order == b.Order
}

func orAny(v string) string {
	if v == "" {
		return Any
	}
	return v
}

func passThrough(v string) bool {
	return v == "" || v == Any || v == None
}
