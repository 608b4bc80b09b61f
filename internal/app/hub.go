package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"trivia/internal/domain"
)

const (
	// DefaultStaleTimeout is how long an idle session lives when unset
	DefaultStaleTimeout = 2 * time.Hour

	cleanupInterval = 10 * time.Minute
)

// GameHub manages all live sessions
type GameHub struct {
	sessions     map[string]*GameSession
	mu           sync.RWMutex
	settings     Settings
	deps         Dependencies
	staleTimeout time.Duration
	logger       *slog.Logger
	done         chan struct{}
	closeOnce    sync.Once
}

// NewGameHub creates a new hub
func NewGameHub(settings Settings, deps Dependencies, staleTimeout time.Duration, logger *slog.Logger) *GameHub {
	if staleTimeout <= 0 {
		staleTimeout = DefaultStaleTimeout
	}

	hub := &GameHub{
		sessions:     make(map[string]*GameSession),
		settings:     settings,
		deps:         deps,
		staleTimeout: staleTimeout,
		logger:       logger,
		done:         make(chan struct{}),
	}

	// Start cleanup goroutine
	go hub.cleanupLoop()

	return hub
}

// CreateSession opens a session for a profile. An empty profile gets a
// fresh key, which the caller should hand back to the client.
func (h *GameHub) CreateSession(profile string) *GameSession {
	if profile == "" {
		profile = uuid.NewString()
	}
	id := uuid.NewString()

	session := NewGameSession(id, profile, h.settings, h.deps, h.logger)

	h.mu.Lock()
	h.sessions[id] = session
	h.mu.Unlock()

	h.logger.Info("session created", "session", id, "profile", profile)
	return session
}

// GetSession returns a session by ID
func (h *GameHub) GetSession(id string) (*GameSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// DeleteSession closes and removes a session
func (h *GameHub) DeleteSession(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[id]; ok {
		session.Close()
		delete(h.sessions, id)
		h.logger.Info("session deleted", "session", id)
	}
}

// GetSessionCount returns the number of live sessions
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetActiveRoundCount returns how many sessions are inside a round
func (h *GameHub) GetActiveRoundCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		switch session.Screen() {
		case domain.ScreenLobby, domain.ScreenGame, domain.ScreenSuddenDeath:
			total++
		}
	}
	return total
}

// Leaderboard returns the best saved scores
func (h *GameHub) Leaderboard(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	if h.deps.Store == nil {
		return nil, nil
	}
	return h.deps.Store.TopScores(ctx, limit)
}

// Close shuts down the hub and all sessions
func (h *GameHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*GameSession)
}

// cleanupLoop periodically cleans up stale sessions
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case now := <-ticker.C:
			h.cleanupStaleSessions(now)
		}
	}
}

// cleanupStaleSessions removes sessions with no clients that have been idle too long
func (h *GameHub) cleanupStaleSessions(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	stale := make([]string, 0)
	for id, session := range h.sessions {
		if session.ClientCount() == 0 && now.Sub(session.LastActive()) > h.staleTimeout {
			stale = append(stale, id)
		}
	}

	for _, id := range stale {
		h.sessions[id].Close()
		delete(h.sessions, id)
		h.logger.Info("stale session cleaned up", "session", id)
	}
	return len(stale)
}
