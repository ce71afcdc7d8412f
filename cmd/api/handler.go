package api

import (
	"github.com/gin-gonic/gin"

	authUsecase "leadbook-backend/internal/auth/usecase"
	dashboardDelivery "leadbook-backend/internal/dashboard/delivery"
	dashboardUsecase "leadbook-backend/internal/dashboard/usecase"
	leadDelivery "leadbook-backend/internal/lead/delivery"
	leadUsecase "leadbook-backend/internal/lead/usecase"
	todoDelivery "leadbook-backend/internal/todo/delivery"
	todoUsecase "leadbook-backend/internal/todo/usecase"
	"leadbook-backend/pkg/config"
	"leadbook-backend/pkg/logger"
	"leadbook-backend/pkg/sse"
)

type Handler struct {
	authUsecase      authUsecase.AuthUsecase
	sseManager       *sse.Manager
	config           *config.Config
	leadHandler      *leadDelivery.LeadHandler
	todoHandler      *todoDelivery.TodoHandler
	dashboardHandler *dashboardDelivery.DashboardHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, leadUc leadUsecase.LeadUsecase, todoUc todoUsecase.TodoUsecase, dashboardUc dashboardUsecase.DashboardUsecase, sseManager *sse.Manager, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:      authUc,
		sseManager:       sseManager,
		config:           cfg,
		leadHandler:      leadDelivery.NewLeadHandler(leadUc),
		todoHandler:      todoDelivery.NewTodoHandler(todoUc),
		dashboardHandler: dashboardDelivery.NewDashboardHandler(dashboardUc),
	}
}

// Engine builds the gin engine with middleware and routes
func (h *Handler) Engine() *gin.Engine {
	if h.config.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(CORSMiddleware())

	SetupRoutes(r, h.authUsecase, h.sseManager, h.leadHandler, h.todoHandler, h.dashboardHandler)
	return r
}

func (h *Handler) Start(addr string) error {
	logger.For("http").Infof("Server starting on %s", addr)
	return h.Engine().Run(addr)
}

// CORSMiddleware reflects the request origin so the browser can send credentials
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
