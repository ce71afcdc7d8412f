package delivery

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/internal/lead/pipeline"
	"leadbook-backend/internal/lead/usecase"
	"leadbook-backend/pkg/httperr"
)

// LeadHandler handles lead-related HTTP requests
type LeadHandler struct {
	leadUsecase usecase.LeadUsecase
	now         func() time.Time
	sessions    *streamSessions
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadUsecase usecase.LeadUsecase) *LeadHandler {
	return &LeadHandler{
		leadUsecase: leadUsecase,
		now:         time.Now,
		sessions:    newStreamSessions(),
	}
}

// StatusRequest is the body of a status change
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CommentRequest is the body of a new comment
type CommentRequest struct {
	Text string `json:"text"`
}

// ListLeads runs the presentation pipeline
// GET /api/leads?tab=active&account=all&priority=overdue&search=acme&sort=created&order=desc&page=1
func (h *LeadHandler) ListLeads(c *gin.Context) {
	params := pipeline.ParseParams(c.Query)

	result, err := h.leadUsecase.ListLeads(c.Request.Context(), params)
	if err != nil {
		httperr.Respond(c, err, "load leads")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOptions returns the shared option sets for forms and filters
// GET /api/leads/options
func (h *LeadHandler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.leadUsecase.Catalog())
}

// GetSuggestions returns client names resembling q
// GET /api/leads/suggestions?q=ali
func (h *LeadHandler) GetSuggestions(c *gin.Context) {
	names, err := h.leadUsecase.Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		httperr.Respond(c, err, "load suggestions")
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": names})
}

// GetLead returns one annotated lead with its activity, newest first
// GET /api/leads/:id
func (h *LeadHandler) GetLead(c *gin.Context) {
	lead, err := h.leadUsecase.GetLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err, "load lead", domain.ErrLeadNotFound)
		return
	}

	activity := make([]domain.Activity, len(lead.Activity))
	for i, a := range lead.Activity {
		activity[len(activity)-1-i] = a
	}
	lead.Activity = activity

	c.JSON(http.StatusOK, lead)
}

// CreateLead adds a lead
// POST /api/leads
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req usecase.AddLeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadUsecase.AddLead(c.Request.Context(), req)
	if err != nil {
		httperr.Respond(c, err, "save lead")
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// UpdateLead edits the lead details
// PUT /api/leads/:id
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	var req usecase.EditLeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadUsecase.EditLead(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		httperr.Respond(c, err, "update lead", domain.ErrLeadNotFound)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// UpdateStatus changes the lead status
// PATCH /api/leads/:id/status
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err.Error())
		return
	}

	if err := h.leadUsecase.ChangeStatus(c.Request.Context(), c.Param("id"), domain.Status(req.Status)); err != nil {
		httperr.Respond(c, err, "update status", domain.ErrLeadNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// AddComment appends a comment
// POST /api/leads/:id/comments
func (h *LeadHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err.Error())
		return
	}

	if err := h.leadUsecase.AddComment(c.Request.Context(), c.Param("id"), req.Text); err != nil {
		httperr.Respond(c, err, "add comment", domain.ErrLeadNotFound)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Comment added"})
}

// SetFollowUp schedules the next follow-up
// PATCH /api/leads/:id/follow-up
func (h *LeadHandler) SetFollowUp(c *gin.Context) {
	var req usecase.FollowUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadUsecase.SetFollowUp(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		httperr.Respond(c, err, "update follow-up", domain.ErrLeadNotFound)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// DeleteLead removes a lead after confirmation
// DELETE /api/leads/:id?confirm=true
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"

	err := h.leadUsecase.DeleteLead(c.Request.Context(), c.Param("id"), confirmed)
	if errors.Is(err, domain.ErrDeleteNotConfirmed) {
		httperr.BadRequest(c, "Confirm deletion with ?confirm=true")
		return
	}
	if err != nil {
		httperr.Respond(c, err, "delete lead", domain.ErrLeadNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}
