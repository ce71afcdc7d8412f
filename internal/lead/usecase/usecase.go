package usecase

import (
	"context"

	"leadbook-backend/internal/catalog"
	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/internal/lead/insight"
	"leadbook-backend/internal/lead/pipeline"
)

// LeadUsecase defines the interface for lead business logic
type LeadUsecase interface {
	// AddLead validates the form and creates a lead
	AddLead(ctx context.Context, input AddLeadInput) (*insight.AnnotatedLead, error)

	// EditLead replaces the editable fields of a lead
	EditLead(ctx context.Context, id string, input EditLeadInput) (*insight.AnnotatedLead, error)

	ChangeStatus(ctx context.Context, id string, status domain.Status) error
	AddComment(ctx context.Context, id, text string) error

	// SetFollowUp schedules or reschedules the follow-up from a date and time or a preset
	SetFollowUp(ctx context.Context, id string, input FollowUpInput) (*insight.AnnotatedLead, error)

	// DeleteLead removes a lead. It refuses unless confirmed is true.
	DeleteLead(ctx context.Context, id string, confirmed bool) error

	GetLead(ctx context.Context, id string) (*insight.AnnotatedLead, error)

	// ListLeads runs the presentation pipeline over the current lead set
	ListLeads(ctx context.Context, params pipeline.Params) (*pipeline.Result, error)

	// Leads returns the raw lead set
	Leads(ctx context.Context) ([]domain.Lead, error)

	// Watch opens a live feed of the lead set
	Watch(ctx context.Context) (*Feed, error)

	// Suggestions returns up to five client names resembling query
	Suggestions(ctx context.Context, query string) ([]string, error)

	Catalog() *catalog.Catalog
}

// AddLeadInput is the add-lead form. Empty option fields take the catalog defaults.
type AddLeadInput struct {
	FullName     string `json:"full_name"`
	Cell         string `json:"cell"`
	QueryType    string `json:"query_type"`
	Account      string `json:"account"`
	Brand        string `json:"brand"`
	Status       string `json:"status"`
	Comment      string `json:"comment"`
	FollowUpDate string `json:"follow_up_date"` // YYYY-MM-DD
	FollowUpTime string `json:"follow_up_time"` // HH:MM
}

// EditLeadInput is the edit form.
type EditLeadInput struct {
	FullName  string `json:"full_name"`
	Cell      string `json:"cell"`
	QueryType string `json:"query_type"`
	Account   string `json:"account"`
	Brand     string `json:"brand"`
	Status    string `json:"status"`
}

// Follow-up presets.
const (
	PresetTomorrow  = "tomorrow"
	PresetThreeDays = "3days"
	PresetWeek      = "week"
)

// FollowUpInput sets a follow-up either from Date and Time or from a Preset.
// A preset without a time uses 12:00.
type FollowUpInput struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Preset string `json:"preset"`
}
