package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trivia/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.GameHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.GameHub, logger *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP attaches a connection to an existing session, or opens a new
// session for the given profile when no sessionId is passed
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sessionID := query.Get("sessionId")

	var session *app.GameSession
	if sessionID != "" {
		var err error
		session, err = h.hub.GetSession(sessionID)
		if err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
	}

	// Upgrade connection to WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	if session == nil {
		session = h.hub.CreateSession(query.Get("profile"))
	}

	clientID := uuid.NewString()
	client := NewClient(conn, session, clientID, h.logger)
	session.RegisterClient(clientID, client)

	h.logger.Info("websocket connected",
		"session", session.ID(),
		"client", clientID,
	)

	client.sendConnected()
	client.Run()
}
