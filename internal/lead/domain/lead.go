package domain

import (
	"errors"
	"time"
)

// Status is the pipeline stage of a lead.
type Status string

const (
	StatusStillInTalk    Status = "Still in Talk"
	StatusPending        Status = "Pending"
	StatusOrderPlaced    Status = "Order Placed"
	StatusOrderDelivered Status = "Order Delivered"
	StatusCancelled      Status = "Cancelled"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusStillInTalk,
	StatusPending,
	StatusOrderPlaced,
	StatusOrderDelivered,
	StatusCancelled,
}

// ActiveStatuses are the in-progress stages shown under the "active" tab.
var ActiveStatuses = []Status{
	StatusStillInTalk,
	StatusPending,
	StatusOrderPlaced,
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Active reports whether s belongs to the active set.
func (s Status) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// Terminal reports whether the lead has left the pipeline.
func (s Status) Terminal() bool {
	return s == StatusOrderDelivered || s == StatusCancelled
}

// Converted reports whether an order was placed or delivered.
func (s Status) Converted() bool {
	return s == StatusOrderPlaced || s == StatusOrderDelivered
}

// ActivityType tags entries in a lead's audit trail.
type ActivityType string

const (
	ActivityStatus   ActivityType = "status"
	ActivityComment  ActivityType = "comment"
	ActivityFollowUp ActivityType = "followup"
	ActivityEdit     ActivityType = "edit"
)

// Comment is a free-text note on a lead.
type Comment struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Activity is one append-only audit entry.
type Activity struct {
	Type ActivityType `json:"type"`
	Text string       `json:"text"`
	Date time.Time    `json:"date"`
}

// Lead is a tracked sales prospect as stored in the leads collection.
type Lead struct {
	ID         string     `json:"id"`
	FullName   string     `json:"full_name"`
	Cell       string     `json:"cell"`
	QueryType  string     `json:"query_type"`
	Account    string     `json:"account"`
	Brand      string     `json:"brand"`
	Status     Status     `json:"status"`
	Comments   []Comment  `json:"comments"`
	Activity   []Activity `json:"activity"`
	FollowUpAt *time.Time `json:"follow_up_at,omitempty"`
	Notified   bool       `json:"notified"`
	CreatedAt  *time.Time `json:"created_at,omitempty"` // nil until the store commits the server timestamp
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// HasFollowUp reports whether a follow-up is scheduled.
func (l *Lead) HasFollowUp() bool {
	return l.FollowUpAt != nil && !l.FollowUpAt.IsZero()
}

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrDeleteNotConfirmed = errors.New("delete must be confirmed")
)

// ValidationError is a rejected form input. Nothing is written when one is returned.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) ValidationField() string {
	return e.Field
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
