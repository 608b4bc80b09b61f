package app

import (
	"context"

	"trivia/internal/domain"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetClientID() string
	Close() error
}

// QuestionLoader supplies the questions of a round
type QuestionLoader interface {
	LoadBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error)
	LoadSingle(ctx context.Context, theme string, exclude []string, difficulty domain.Difficulty) (domain.TriviaQuestion, error)
}

// ThemeProvider names the theme of a round. It never fails.
type ThemeProvider interface {
	Theme(ctx context.Context) string
}

// Persistence keeps a profile's identity and play counter. Best-effort.
type Persistence interface {
	SessionIdentity(ctx context.Context, profile string) (*domain.Identity, error)
	SetSessionIdentity(ctx context.Context, profile string, id domain.Identity) error
	ClearSessionIdentity(ctx context.Context, profile string) error
	GamesPlayed(ctx context.Context, profile string) (int, error)
	IncrementGamesPlayed(ctx context.Context, profile string) (int, error)
}

// Accounts registers and authenticates players
type Accounts interface {
	Register(ctx context.Context, creds domain.Credentials) (domain.Identity, error)
	Authenticate(ctx context.Context, email, password string) (domain.Identity, error)
}

// Scoreboard keeps finished rounds
type Scoreboard interface {
	SaveScore(ctx context.Context, entry domain.ScoreEntry) error
	TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error)
}

// Store is everything a session persists
type Store interface {
	Persistence
	Accounts
	Scoreboard
}
