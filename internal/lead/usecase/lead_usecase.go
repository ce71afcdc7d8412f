package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leadbook-backend/internal/catalog"
	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/internal/lead/insight"
	"leadbook-backend/internal/lead/pipeline"
	"leadbook-backend/internal/lead/repository"
	"leadbook-backend/pkg/fuzzy"
	"leadbook-backend/pkg/logger"
)

const (
	minCellLength     = 6
	maxSuggestions    = 5
	defaultPresetTime = "12:00"
)

// leadUsecase implements LeadUsecase interface
type leadUsecase struct {
	leadRepo repository.LeadRepository
	catalog  *catalog.Catalog
	now      func() time.Time
	loc      *time.Location
	log      *logrus.Entry
}

// NewLeadUsecase creates a new instance of leadUsecase.
// Follow-up dates and times are read in loc.
func NewLeadUsecase(leadRepo repository.LeadRepository, cat *catalog.Catalog, now func() time.Time, loc *time.Location) LeadUsecase {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &leadUsecase{
		leadRepo: leadRepo,
		catalog:  cat,
		now:      now,
		loc:      loc,
		log:      logger.For("lead"),
	}
}

func (u *leadUsecase) Catalog() *catalog.Catalog {
	return u.catalog
}

func (u *leadUsecase) AddLead(ctx context.Context, input AddLeadInput) (*insight.AnnotatedLead, error) {
	now := u.now()

	if err := validateContact(input.FullName, input.Cell); err != nil {
		return nil, err
	}
	followUpAt, err := u.parseFollowUp(input.FollowUpDate, input.FollowUpTime, now)
	if err != nil {
		return nil, err
	}
	status := domain.StatusStillInTalk
	if input.Status != "" {
		status = domain.Status(input.Status)
		if !status.Valid() {
			return nil, domain.Invalid("status", "Unknown status")
		}
	}

	lead := &domain.Lead{
		FullName:   strings.TrimSpace(input.FullName),
		Cell:       strings.TrimSpace(input.Cell),
		QueryType:  orDefault(input.QueryType, u.catalog.DefaultQueryType()),
		Account:    orDefault(input.Account, u.catalog.DefaultAccount()),
		Brand:      orDefault(input.Brand, u.catalog.DefaultBrand()),
		Status:     status,
		FollowUpAt: followUpAt,
		Comments:   []domain.Comment{},
		Activity:   []domain.Activity{},
	}
	if err := u.validateOptions(lead.QueryType, lead.Account, lead.Brand, nil); err != nil {
		return nil, err
	}
	if text := strings.TrimSpace(input.Comment); text != "" {
		lead.Comments = append(lead.Comments, domain.Comment{Text: text, Date: now})
	}

	id, err := u.leadRepo.Create(ctx, lead)
	if err != nil {
		u.log.WithError(err).Error("[LeadUsecase] Failed to save lead")
		return nil, err
	}
	u.log.WithField("lead_id", id).Infof("[LeadUsecase] Lead added: %s", lead.FullName)

	return u.GetLead(ctx, id)
}

func (u *leadUsecase) EditLead(ctx context.Context, id string, input EditLeadInput) (*insight.AnnotatedLead, error) {
	if err := validateContact(input.FullName, input.Cell); err != nil {
		return nil, err
	}
	status := domain.Status(input.Status)
	if !status.Valid() {
		return nil, domain.Invalid("status", "Unknown status")
	}

	current, err := u.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := repository.Details{
		FullName:  strings.TrimSpace(input.FullName),
		Cell:      strings.TrimSpace(input.Cell),
		QueryType: orDefault(input.QueryType, current.QueryType),
		Account:   orDefault(input.Account, current.Account),
		Brand:     orDefault(input.Brand, current.Brand),
		Status:    status,
	}
	if err := u.validateOptions(details.QueryType, details.Account, details.Brand, current); err != nil {
		return nil, err
	}
	entry := domain.Activity{Type: domain.ActivityEdit, Text: "Lead details updated", Date: u.now()}
	if err := u.leadRepo.UpdateDetails(ctx, id, details, entry); err != nil {
		return nil, err
	}
	return u.GetLead(ctx, id)
}

func (u *leadUsecase) ChangeStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.Valid() {
		return domain.Invalid("status", "Unknown status")
	}
	entry := domain.Activity{Type: domain.ActivityStatus, Text: "Status → " + string(status), Date: u.now()}
	return u.leadRepo.UpdateStatus(ctx, id, status, entry)
}

func (u *leadUsecase) AddComment(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Invalid("text", "Comment cannot be empty")
	}
	now := u.now()
	comment := domain.Comment{Text: text, Date: now}
	entry := domain.Activity{Type: domain.ActivityComment, Text: text, Date: now}
	return u.leadRepo.AddComment(ctx, id, comment, entry)
}

func (u *leadUsecase) SetFollowUp(ctx context.Context, id string, input FollowUpInput) (*insight.AnnotatedLead, error) {
	now := u.now()

	date, clock := input.Date, input.Time
	if input.Preset != "" {
		days, ok := presetDays[input.Preset]
		if !ok {
			return nil, domain.Invalid("preset", "Unknown follow-up preset")
		}
		date = now.In(u.loc).AddDate(0, 0, days).Format("2006-01-02")
		if clock == "" {
			clock = defaultPresetTime
		}
	}
	if date == "" && clock == "" {
		return nil, domain.Invalid("follow_up", "Select both follow-up date & time")
	}

	at, err := u.parseFollowUp(date, clock, now)
	if err != nil {
		return nil, err
	}

	entry := domain.Activity{
		Type: domain.ActivityFollowUp,
		Text: "Followup → " + at.Format(time.RFC3339),
		Date: now,
	}
	if err := u.leadRepo.SetFollowUp(ctx, id, *at, entry); err != nil {
		return nil, err
	}
	return u.GetLead(ctx, id)
}

func (u *leadUsecase) DeleteLead(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrDeleteNotConfirmed
	}
	if _, err := u.leadRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := u.leadRepo.Delete(ctx, id); err != nil {
		return err
	}
	u.log.WithField("lead_id", id).Info("[LeadUsecase] Lead deleted")
	return nil
}

func (u *leadUsecase) GetLead(ctx context.Context, id string) (*insight.AnnotatedLead, error) {
	lead, err := u.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	annotated := insight.Annotate(*lead, u.now())
	return &annotated, nil
}

func (u *leadUsecase) ListLeads(ctx context.Context, params pipeline.Params) (*pipeline.Result, error) {
	leads, err := u.leadRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := pipeline.Run(leads, params, u.now())
	return &result, nil
}

func (u *leadUsecase) Leads(ctx context.Context) ([]domain.Lead, error) {
	return u.leadRepo.FindAll(ctx)
}

func (u *leadUsecase) Watch(ctx context.Context) (*Feed, error) {
	sub, err := u.leadRepo.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe to leads: %w", err)
	}
	return &Feed{sub: sub}, nil
}

func (u *leadUsecase) Suggestions(ctx context.Context, query string) ([]string, error) {
	leads, err := u.leadRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(leads))
	for _, l := range leads {
		names = append(names, l.FullName)
	}
	return fuzzy.Suggest(query, names, maxSuggestions), nil
}

var presetDays = map[string]int{
	PresetTomorrow:  1,
	PresetThreeDays: 3,
	PresetWeek:      7,
}

// parseFollowUp composes the date and time in the configured location.
// Both empty means no follow-up.
func (u *leadUsecase) parseFollowUp(date, clock string, now time.Time) (*time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" && clock == "" {
		return nil, nil
	}
	if date == "" || clock == "" {
		return nil, domain.Invalid("follow_up", "Select both follow-up date & time")
	}

	at, err := time.ParseInLocation("2006-01-02T15:04", date+"T"+clock, u.loc)
	if err != nil {
		return nil, domain.Invalid("follow_up", "Invalid follow-up date or time")
	}
	if at.Before(now) {
		return nil, domain.Invalid("follow_up", "Follow-up must be future time")
	}
	return &at, nil
}

func validateContact(name, cell string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Invalid("full_name", "Client name required")
	}
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return domain.Invalid("cell", "Cell number required")
	}
	if len(cell) < minCellLength {
		return domain.Invalid("cell", "Cell seems invalid")
	}
	return nil
}

// validateOptions rejects option values the catalog does not offer. A value equal to
// the one already stored on current is kept, so leads saved under an older catalog stay editable.
func (u *leadUsecase) validateOptions(queryType, account, brand string, current *domain.Lead) error {
	var stored domain.Lead
	if current != nil {
		stored = *current
	}
	if queryType != stored.QueryType && !u.catalog.HasQueryType(queryType) {
		return domain.Invalid("query_type", "Unknown query type")
	}
	if account != stored.Account && !u.catalog.HasAccount(account) {
		return domain.Invalid("account", "Unknown account")
	}
	if brand != stored.Brand && !u.catalog.HasBrand(brand) {
		return domain.Invalid("brand", "Unknown brand")
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
