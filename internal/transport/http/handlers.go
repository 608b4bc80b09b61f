package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"trivia/internal/domain"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateSessionRequest optionally names the profile to resume
type CreateSessionRequest struct {
	Profile string `json:"profile"`
}

// CreateSessionResponse is the response for session creation
type CreateSessionResponse struct {
	SessionID    string `json:"sessionId"`
	Profile      string `json:"profile"`
	WebSocketURL string `json:"webSocketUrl"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveSessions int `json:"activeSessions"`
	ActiveRounds   int `json:"activeRounds"`
}

// handleCreateSession handles POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.sendError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON")
		return
	}

	session := s.hub.CreateSession(req.Profile)

	scheme := "ws"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "wss"
	}

	s.sendSuccess(w, &CreateSessionResponse{
		SessionID:    session.ID(),
		Profile:      session.Profile(),
		WebSocketURL: scheme + "://" + r.Host + "/ws?sessionId=" + session.ID(),
	})
}

// handleGetSession handles GET /api/sessions/{sessionId}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.hub.GetSession(r.PathValue("sessionId"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.sendError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	s.sendSuccess(w, session.Snapshot())
}

// handleDeleteSession handles DELETE /api/sessions/{sessionId}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sessionId")
	if _, err := s.hub.GetSession(id); err != nil {
		s.sendError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
		return
	}

	s.hub.DeleteSession(id)
	s.sendSuccess(w, nil)
}

// handleLeaderboard handles GET /api/leaderboard?limit=n
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.sendError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.hub.Leaderboard(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read leaderboard", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	if entries == nil {
		entries = []domain.ScoreEntry{}
	}

	s.sendSuccess(w, entries)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveSessions: s.hub.GetSessionCount(),
		ActiveRounds:   s.hub.GetActiveRoundCount(),
	})
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
