package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"trivia/internal/domain"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		profile_key TEXT PRIMARY KEY,
		identity_id TEXT,
		email TEXT,
		username TEXT,
		games_played INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		username TEXT,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS scores (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		score INTEGER NOT NULL,
		theme TEXT NOT NULL DEFAULT '',
		won INTEGER NOT NULL DEFAULT 0,
		standings TEXT NOT NULL DEFAULT '[]',
		played_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC, played_at DESC);`,
}

// SQLite stores data in a local SQLite file
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent sessions
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// SessionIdentity returns the identity stored for a profile, or nil
func (s *SQLite) SessionIdentity(ctx context.Context, profile string) (*domain.Identity, error) {
	var id, email, username sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT identity_id, email, username FROM profiles WHERE profile_key = ?`, profile,
	).Scan(&id, &email, &username)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Identity{ID: id.String, Email: email.String, Username: username.String}, nil
}

// SetSessionIdentity stores the identity for a profile
func (s *SQLite) SetSessionIdentity(ctx context.Context, profile string, id domain.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (profile_key, identity_id, email, username, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(profile_key) DO UPDATE SET
			identity_id = excluded.identity_id,
			email = excluded.email,
			username = excluded.username,
			updated_at = CURRENT_TIMESTAMP`,
		profile, id.ID, id.Email, id.Username)
	return err
}

// ClearSessionIdentity forgets the identity of a profile but keeps its counter
func (s *SQLite) ClearSessionIdentity(ctx context.Context, profile string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET identity_id = NULL, email = NULL, username = NULL, updated_at = CURRENT_TIMESTAMP WHERE profile_key = ?`,
		profile)
	return err
}

// GamesPlayed returns the play counter of a profile
func (s *SQLite) GamesPlayed(ctx context.Context, profile string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT games_played FROM profiles WHERE profile_key = ?`, profile).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// IncrementGamesPlayed bumps the play counter and returns the new value
func (s *SQLite) IncrementGamesPlayed(ctx context.Context, profile string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO profiles (profile_key, games_played) VALUES (?, 1)
		ON CONFLICT(profile_key) DO UPDATE SET games_played = games_played + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING games_played`, profile).Scan(&n)
	return n, err
}

// Register creates an account
func (s *SQLite) Register(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	id, hash, err := newAccount(creds)
	if err != nil {
		return domain.Identity{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, username, password_hash) VALUES (?, ?, ?, ?)`,
		id.ID, id.Email, id.Username, hash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return domain.Identity{}, domain.ErrAccountExists
		}
		return domain.Identity{}, err
	}
	return id, nil
}

// Authenticate checks an email and password pair
func (s *SQLite) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	var id domain.Identity
	var username sql.NullString
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash FROM accounts WHERE email = ?`, normalizeEmail(email),
	).Scan(&id.ID, &id.Email, &username, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Identity{}, err
	}
	if err := checkPassword(hash, password); err != nil {
		return domain.Identity{}, err
	}
	id.Username = username.String
	return id, nil
}

// SaveScore appends a finished round to the leaderboard
func (s *SQLite) SaveScore(ctx context.Context, entry domain.ScoreEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.PlayedAt.IsZero() {
		entry.PlayedAt = time.Now()
	}
	standings, err := json.Marshal(entry.Standings)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scores (id, username, score, theme, won, standings, played_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Username, entry.Score, entry.Theme, entry.Won, string(standings), entry.PlayedAt.UTC())
	return err
}

// TopScores returns the best scores, most recent first on ties
func (s *SQLite) TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, score, theme, won, standings, played_at
		FROM scores
		ORDER BY score DESC, played_at DESC
		LIMIT ?`, limitOrDefault(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScoreEntry
	for rows.Next() {
		var e domain.ScoreEntry
		var standings string
		if err := rows.Scan(&e.ID, &e.Username, &e.Score, &e.Theme, &e.Won, &standings, &e.PlayedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(standings), &e.Standings); err != nil {
			return nil, fmt.Errorf("decode standings: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}
