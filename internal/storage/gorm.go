package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"trivia/internal/domain"
)

// PoolConfig sizes the Postgres connection pool
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Gorm stores data in Postgres through gorm
type Gorm struct {
	db *gorm.DB
}

// OpenPostgres connects to Postgres using dsn
func OpenPostgres(dsn string, pool PoolConfig) (*Gorm, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	return &Gorm{db: db}, nil
}

// NewGorm wraps an existing connection
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// SessionIdentity returns the identity stored for a profile, or nil
func (g *Gorm) SessionIdentity(ctx context.Context, profile string) (*domain.Identity, error) {
	var p Profile
	err := g.db.WithContext(ctx).First(&p, "profile_key = ?", profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.identity(), nil
}

// SetSessionIdentity stores the identity for a profile
func (g *Gorm) SetSessionIdentity(ctx context.Context, profile string, id domain.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	row := Profile{
		ProfileKey: profile,
		IdentityID: &id.ID,
		Email:      &id.Email,
		Username:   &id.Username,
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"identity_id", "email", "username", "updated_at"}),
	}).Create(&row).Error
}

// ClearSessionIdentity forgets the identity of a profile but keeps its counter
func (g *Gorm) ClearSessionIdentity(ctx context.Context, profile string) error {
	return g.db.WithContext(ctx).Model(&Profile{}).
		Where("profile_key = ?", profile).
		Updates(map[string]interface{}{"identity_id": nil, "email": nil, "username": nil}).Error
}

// GamesPlayed returns the play counter of a profile
func (g *Gorm) GamesPlayed(ctx context.Context, profile string) (int, error) {
	var p Profile
	err := g.db.WithContext(ctx).Select("games_played").First(&p, "profile_key = ?", profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return p.GamesPlayed, err
}

// IncrementGamesPlayed bumps the play counter and returns the new value
func (g *Gorm) IncrementGamesPlayed(ctx context.Context, profile string) (int, error) {
	row := Profile{ProfileKey: profile, GamesPlayed: 1}
	err := g.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "profile_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"games_played": gorm.Expr("profiles.games_played + 1"),
				"updated_at":   time.Now(),
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "games_played"}}},
	).Create(&row).Error
	return row.GamesPlayed, err
}

// Register creates an account
func (g *Gorm) Register(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	id, hash, err := newAccount(creds)
	if err != nil {
		return domain.Identity{}, err
	}

	row := Account{ID: id.ID, Email: id.Email, Username: id.Username, PasswordHash: hash}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return domain.Identity{}, domain.ErrAccountExists
		}
		return domain.Identity{}, err
	}
	return id, nil
}

// Authenticate checks an email and password pair
func (g *Gorm) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	var row Account
	err := g.db.WithContext(ctx).First(&row, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Identity{}, err
	}
	if err := checkPassword(row.PasswordHash, password); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ID: row.ID, Email: row.Email, Username: row.Username}, nil
}

// SaveScore appends a finished round to the leaderboard
func (g *Gorm) SaveScore(ctx context.Context, entry domain.ScoreEntry) error {
	standings, err := json.Marshal(entry.Standings)
	if err != nil {
		return err
	}
	row := Score{
		ID:        entry.ID,
		Username:  entry.Username,
		Score:     entry.Score,
		Theme:     entry.Theme,
		Won:       entry.Won,
		Standings: datatypes.JSON(standings),
		PlayedAt:  entry.PlayedAt,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.PlayedAt.IsZero() {
		row.PlayedAt = time.Now()
	}
	return g.db.WithContext(ctx).Create(&row).Error
}

// TopScores returns the best scores, most recent first on ties
func (g *Gorm) TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	var rows []Score
	err := g.db.WithContext(ctx).
		Order("score DESC").Order("played_at DESC").
		Limit(limitOrDefault(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScoreEntry, 0, len(rows))
	for _, row := range rows {
		e := domain.ScoreEntry{
			ID:       row.ID,
			Username: row.Username,
			Score:    row.Score,
			Theme:    row.Theme,
			Won:      row.Won,
			PlayedAt: row.PlayedAt,
		}
		if err := json.Unmarshal(row.Standings, &e.Standings); err != nil {
			return nil, fmt.Errorf("decode standings: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Close closes the underlying connection pool
func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
