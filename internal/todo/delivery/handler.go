package delivery

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadbook-backend/internal/todo/domain"
	"leadbook-backend/internal/todo/usecase"
	"leadbook-backend/pkg/httperr"
	"leadbook-backend/pkg/logger"
)

// TodoHandler handles todo-related HTTP requests
type TodoHandler struct {
	todoUsecase usecase.TodoUsecase
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(todoUsecase usecase.TodoUsecase) *TodoHandler {
	return &TodoHandler{
		todoUsecase: todoUsecase,
	}
}

// CreateTodoRequest represents the request body for adding a todo
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// Containment turns a panic anywhere in the todo routes into a fallback
// response so the rest of the dashboard keeps working.
func Containment() gin.HandlerFunc {
	log := logger.For("todo")
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		detail := fmt.Sprint(recovered)
		log.WithField("path", c.FullPath()).Errorf("[TodoBoard] Recovered from panic: %s", detail)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":  "Todo board crashed",
			"detail": detail,
		})
	})
}

// GetToday returns today's list, stats and late banner
// GET /api/todos/today
func (h *TodoHandler) GetToday(c *gin.Context) {
	board, err := h.todoUsecase.Today(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		httperr.Respond(c, err, "load tasks")
		return
	}

	c.JSON(http.StatusOK, board)
}

// StreamToday pushes the board every time today's list changes
// GET /api/todos/stream
func (h *TodoHandler) StreamToday(c *gin.Context) {
	feed, err := h.todoUsecase.Watch(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		httperr.Respond(c, err, "subscribe to tasks")
		return
	}
	defer feed.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		board, ok := feed.Next()
		if !ok {
			if feed.Err() != nil {
				c.SSEvent("error", gin.H{"error": "Live updates unavailable"})
			}
			return false
		}
		c.SSEvent("todos", board)
		return true
	})
}

// CreateTodo adds a todo to today's list
// POST /api/todos
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err.Error())
		return
	}

	todo, err := h.todoUsecase.Add(c.Request.Context(), req.Text)
	if errors.Is(err, domain.ErrEmptyText) {
		httperr.BadRequest(c, "Task text required")
		return
	}
	if err != nil {
		httperr.Respond(c, err, "add task")
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// ToggleTodo flips a todo between open and done
// PATCH /api/todos/:id/toggle
func (h *TodoHandler) ToggleTodo(c *gin.Context) {
	todo, err := h.todoUsecase.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err, "update task", domain.ErrTodoNotFound)
		return
	}

	c.JSON(http.StatusOK, todo)
}

// DeleteTodo deletes a todo
// DELETE /api/todos/:id
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	if err := h.todoUsecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httperr.Respond(c, err, "delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Rollover carries yesterday's unfinished todos over to today
// POST /api/todos/rollover
func (h *TodoHandler) Rollover(c *gin.Context) {
	result, err := h.todoUsecase.Rollover(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, "check for late tasks")
		return
	}

	c.JSON(http.StatusOK, result)
}

// DismissBanner hides today's late banner for the current user
// POST /api/todos/banner/dismiss
func (h *TodoHandler) DismissBanner(c *gin.Context) {
	if err := h.todoUsecase.DismissBanner(c.Request.Context(), c.GetString("userID")); err != nil {
		httperr.Respond(c, err, "dismiss banner")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Banner dismissed"})
}
