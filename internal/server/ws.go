package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/asengupta/framesight/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// RecordsFeedHandler broadcasts per-frame analysis records via
// WebSocket.
type RecordsFeedHandler struct {
	app     *app.App
	logger  *slog.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewRecordsFeedHandler creates a new RecordsFeedHandler for the given
// pipeline.
func NewRecordsFeedHandler(a *app.App, logger *slog.Logger) *RecordsFeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &RecordsFeedHandler{
		app:     a,
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *RecordsFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
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

// broadcast sends analysis records to all connected clients.
func (h *RecordsFeedHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		frame, rec, err := h.app.NextFrame(context.Background())
		if err != nil {
			continue
		}
		frame.Close()
		if rec == nil {
			continue
		}

		msg, _ := json.Marshal(map[string]any{
			"record":    rec,
			"timestamp": time.Now().UnixMilli(),
		})

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
