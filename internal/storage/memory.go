package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"trivia/internal/domain"
)

type memoryAccount struct {
	identity domain.Identity
	hash     string
}

// Memory keeps everything in process memory
type Memory struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity
	played     map[string]int
	accounts   map[string]memoryAccount // email -> account
	scores     []domain.ScoreEntry
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		identities: make(map[string]domain.Identity),
		played:     make(map[string]int),
		accounts:   make(map[string]memoryAccount),
	}
}

// SessionIdentity returns the identity stored for a profile, or nil
func (m *Memory) SessionIdentity(ctx context.Context, profile string) (*domain.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.identities[profile]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

// SetSessionIdentity stores the identity for a profile
func (m *Memory) SetSessionIdentity(ctx context.Context, profile string, id domain.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[profile] = id
	return nil
}

// ClearSessionIdentity forgets the identity of a profile
func (m *Memory) ClearSessionIdentity(ctx context.Context, profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.identities, profile)
	return nil
}

// GamesPlayed returns the play counter of a profile
func (m *Memory) GamesPlayed(ctx context.Context, profile string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.played[profile], nil
}

// IncrementGamesPlayed bumps the play counter and returns the new value
func (m *Memory) IncrementGamesPlayed(ctx context.Context, profile string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played[profile]++
	return m.played[profile], nil
}

// Register creates an account
func (m *Memory) Register(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	id, hash, err := newAccount(creds)
	if err != nil {
		return domain.Identity{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[id.Email]; exists {
		return domain.Identity{}, domain.ErrAccountExists
	}
	m.accounts[id.Email] = memoryAccount{identity: id, hash: hash}
	return id, nil
}

// Authenticate checks an email and password pair
func (m *Memory) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	m.mu.RLock()
	acct, ok := m.accounts[normalizeEmail(email)]
	m.mu.RUnlock()
	if !ok {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	if err := checkPassword(acct.hash, password); err != nil {
		return domain.Identity{}, err
	}
	return acct.identity, nil
}

// SaveScore appends a finished round to the leaderboard
func (m *Memory) SaveScore(ctx context.Context, entry domain.ScoreEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.PlayedAt.IsZero() {
		entry.PlayedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, entry)
	return nil
}

// TopScores returns the best scores, most recent first on ties
func (m *Memory) TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	m.mu.RLock()
	out := make([]domain.ScoreEntry, len(m.scores))
	copy(out, m.scores)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayedAt.After(out[j].PlayedAt)
	})

	if limit = limitOrDefault(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}
