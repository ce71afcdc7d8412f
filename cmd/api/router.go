package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadbook-backend/internal/auth/delivery"
	authUsecase "leadbook-backend/internal/auth/usecase"
	dashboardDelivery "leadbook-backend/internal/dashboard/delivery"
	leadDelivery "leadbook-backend/internal/lead/delivery"
	todoDelivery "leadbook-backend/internal/todo/delivery"
	"leadbook-backend/pkg/sse"
)

func SetupRoutes(
	r *gin.Engine,
	authUsecase authUsecase.AuthUsecase,
	sseManager *sse.Manager,
	leadHandler *leadDelivery.LeadHandler,
	todoHandler *todoDelivery.TodoHandler,
	dashboardHandler *dashboardDelivery.DashboardHandler,
) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	requireAuth := delivery.AuthMiddleware(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE endpoint
		api.GET("/events", requireAuth, func(c *gin.Context) {
			sseManager.ServeHTTP(c, c.GetString("userID"))
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/firebase", authHandler.FirebaseSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(requireAuth)
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Lead routes (protected)
		leads := api.Group("/leads")
		leads.Use(requireAuth)
		{
			leads.GET("", leadHandler.ListLeads)
			leads.GET("/stream", leadHandler.StreamLeads)
			leads.POST("/stream/:session", leadHandler.ControlStream)
			leads.GET("/options", leadHandler.GetOptions)
			leads.GET("/suggestions", leadHandler.GetSuggestions)
			leads.GET("/:id", leadHandler.GetLead)
			leads.POST("", leadHandler.CreateLead)
			leads.PUT("/:id", leadHandler.UpdateLead)
			leads.PATCH("/:id/status", leadHandler.UpdateStatus)
			leads.POST("/:id/comments", leadHandler.AddComment)
			leads.PATCH("/:id/follow-up", leadHandler.SetFollowUp)
			leads.DELETE("/:id", leadHandler.DeleteLead)
		}

		// Todo routes (protected). A crash here must not take the dashboard down.
		todos := api.Group("/todos")
		todos.Use(requireAuth, todoDelivery.Containment())
		{
			todos.GET("/today", todoHandler.GetToday)
			todos.GET("/stream", todoHandler.StreamToday)
			todos.POST("", todoHandler.CreateTodo)
			todos.PATCH("/:id/toggle", todoHandler.ToggleTodo)
			todos.DELETE("/:id", todoHandler.DeleteTodo)
			todos.POST("/rollover", todoHandler.Rollover)
			todos.POST("/banner/dismiss", todoHandler.DismissBanner)
		}

		// Dashboard routes (protected)
		dashboard := api.Group("/dashboard")
		dashboard.Use(requireAuth)
		{
			dashboard.GET("", dashboardHandler.GetSummary)
			dashboard.GET("/pipeline", dashboardHandler.GetPipeline)
		}
	}
}
