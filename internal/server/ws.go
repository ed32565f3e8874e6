package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/drishti/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LiveHandler broadcasts the latest analysis results via WebSocket. Each
// client subscribes to one session with ?session_id=...; the handler
// pushes that session's most recent frame result on a fixed cadence.
type LiveHandler struct {
	registry *session.Registry
	clients  map[*websocket.Conn]string
	mu       sync.RWMutex
}

// NewLiveHandler creates a new LiveHandler backed by the given registry.
func NewLiveHandler(registry *session.Registry) *LiveHandler {
	h := &LiveHandler{
		registry: registry,
		clients:  make(map[*websocket.Conn]string),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = sessionID
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast pushes each subscribed session's latest result to its clients.
func (h *LiveHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}

		// One snapshot per distinct session this tick
		payloads := make(map[string][]byte)
		for _, sessionID := range h.clients {
			if _, ok := payloads[sessionID]; ok {
				continue
			}
			result, at := h.registry.Latest(sessionID)
			if result == nil {
				continue
			}
			msg, _ := json.Marshal(map[string]any{
				"session_id": sessionID,
				"result":     result,
				"timestamp":  at.UnixMilli(),
			})
			payloads[sessionID] = msg
		}

		for conn, sessionID := range h.clients {
			msg, ok := payloads[sessionID]
			if !ok {
				continue
			}
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
