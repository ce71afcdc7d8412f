package delivery

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadbook-backend/internal/lead/domain"
	"leadbook-backend/internal/lead/pipeline"
	"leadbook-backend/pkg/httperr"
)

// streamSession is the server-side view behind one open lead stream
type streamSession struct {
	userID  string
	view    *pipeline.View
	changed chan struct{}
}

// notify wakes the stream without blocking. Pending wakes coalesce.
func (s *streamSession) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

type streamSessions struct {
	mu       sync.Mutex
	sessions map[string]*streamSession
}

func newStreamSessions() *streamSessions {
	return &streamSessions{sessions: make(map[string]*streamSession)}
}

func (r *streamSessions) open(userID string, view *pipeline.View) (string, *streamSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New().String()
	s := &streamSession{userID: userID, view: view, changed: make(chan struct{}, 1)}
	r.sessions[id] = s
	return id, s
}

func (r *streamSessions) close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// get returns the session only to the user that opened it
func (r *streamSessions) get(id, userID string) (*streamSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.userID != userID {
		return nil, false
	}
	return s, true
}

// StreamLeads pushes the current page every time the lead set or the view changes.
// The first event carries the session id used by ControlStream.
// GET /api/leads/stream (same query parameters as ListLeads)
func (h *LeadHandler) StreamLeads(c *gin.Context) {
	ctx := c.Request.Context()
	feed, err := h.leadUsecase.Watch(ctx)
	if err != nil {
		httperr.Respond(c, err, "subscribe to leads")
		return
	}
	defer feed.Close()

	view := pipeline.NewView(h.now)
	view.SetParams(pipeline.ParseParams(c.Query))

	sessionID, session := h.sessions.open(c.GetString("userID"), view)
	defer h.sessions.close(sessionID)

	updates := make(chan []domain.Lead)
	go func() {
		defer close(updates)
		for {
			leads, ok := feed.Next()
			if !ok {
				return
			}
			select {
			case updates <- leads:
			case <-ctx.Done():
				return
			}
		}
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("session", gin.H{"session_id": sessionID})
	c.Writer.Flush()

	loaded := false
	c.Stream(func(w io.Writer) bool {
		select {
		case leads, ok := <-updates:
			if !ok {
				if err := feed.Err(); err != nil {
					c.SSEvent("error", gin.H{"error": "Live updates unavailable"})
				}
				return false
			}
			view.SetLeads(leads)
			loaded = true
		case <-session.changed:
			if !loaded {
				return true
			}
		case <-ctx.Done():
			return false
		}
		c.SSEvent("leads", view.Frame())
		return true
	})
}

// ControlStream applies a UI command to an open lead stream and returns the new frame.
// The stream re-emits the frame as well.
// POST /api/leads/stream/:session
func (h *LeadHandler) ControlStream(c *gin.Context) {
	session, ok := h.sessions.get(c.Param("session"), c.GetString("userID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stream session not found"})
		return
	}

	var cmd pipeline.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		httperr.BadRequest(c, "action is required")
		return
	}
	if err := session.view.Apply(cmd); err != nil {
		if errors.Is(err, pipeline.ErrUnknownAction) {
			httperr.BadRequest(c, err.Error())
			return
		}
		httperr.Respond(c, err, "update view")
		return
	}

	session.notify()
	c.JSON(http.StatusOK, session.view.Frame())
}
