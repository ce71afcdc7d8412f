package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadbook-backend/internal/dashboard/usecase"
	"leadbook-backend/pkg/httperr"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardUsecase usecase.DashboardUsecase
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardUsecase usecase.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboardUsecase: dashboardUsecase}
}

// GetSummary returns follow-up lists, urgency, metrics and today's todos
// GET /api/dashboard
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboardUsecase.Summary(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		httperr.Respond(c, err, "load dashboard")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetPipeline returns leads grouped by stage
// GET /api/dashboard/pipeline
func (h *DashboardHandler) GetPipeline(c *gin.Context) {
	stages, err := h.dashboardUsecase.Pipeline(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, "load pipeline")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stages": stages})
}
