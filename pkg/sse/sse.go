// Package sse fans server events out to connected browsers.
package sse

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"leadbook-backend/pkg/logger"
)

const (
	clientBuffer      = 16
	heartbeatInterval = 30 * time.Second
)

// Message is one event sent to a browser.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type client struct {
	userID string
	ch     chan Message
}

type envelope struct {
	userID string // empty means every client
	msg    Message
}

// Manager tracks connected clients. All client bookkeeping happens on the Run goroutine.
type Manager struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	outbox     chan envelope
	stop       chan struct{}
	count      atomic.Int64
}

// NewManager creates a manager. Call Run in its own goroutine before use.
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		outbox:     make(chan envelope, 64),
		stop:       make(chan struct{}),
	}
}

// Run processes registrations and deliveries until Stop is called.
func (m *Manager) Run() {
	log := logger.For("sse")
	for {
		select {
		case c := <-m.register:
			m.clients[c] = true
			m.count.Store(int64(len(m.clients)))
			log.Debugf("[SSE] Client connected for user %s (%d total)", c.userID, len(m.clients))
		case c := <-m.unregister:
			if m.clients[c] {
				delete(m.clients, c)
				close(c.ch)
				m.count.Store(int64(len(m.clients)))
			}
		case env := <-m.outbox:
			for c := range m.clients {
				if env.userID != "" && c.userID != env.userID {
					continue
				}
				select {
				case c.ch <- env.msg:
				default:
					log.Warnf("[SSE] Dropping %s event for slow client of user %s", env.msg.Type, c.userID)
				}
			}
		case <-m.stop:
			for c := range m.clients {
				delete(m.clients, c)
				close(c.ch)
			}
			m.count.Store(0)
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (m *Manager) Stop() {
	close(m.stop)
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	return int(m.count.Load())
}

// SendToUser queues an event for every connection of one user.
func (m *Manager) SendToUser(userID string, eventType string, payload interface{}) {
	m.enqueue(envelope{userID: userID, msg: Message{Type: eventType, Payload: payload}})
}

// Broadcast queues an event for every connected client.
func (m *Manager) Broadcast(eventType string, payload interface{}) {
	m.enqueue(envelope{msg: Message{Type: eventType, Payload: payload}})
}

func (m *Manager) enqueue(env envelope) {
	select {
	case m.outbox <- env:
	case <-m.stop:
	}
}

// Subscribe registers a client and returns its event channel and a cancel func.
func (m *Manager) Subscribe(userID string) (<-chan Message, func()) {
	c := &client{userID: userID, ch: make(chan Message, clientBuffer)}
	select {
	case m.register <- c:
	case <-m.stop:
		close(c.ch)
		return c.ch, func() {}
	}
	return c.ch, func() {
		select {
		case m.unregister <- c:
		case <-m.stop:
		}
	}
}

// ServeHTTP streams events to the requesting browser until it disconnects.
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	events, cancel := m.Subscribe(userID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.SSEvent("connected", gin.H{"user_id": userID})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(msg.Type, msg.Payload)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
