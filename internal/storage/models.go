package storage

import (
	"time"

	"gorm.io/datatypes"

	"trivia/internal/domain"
)

// Profile is the persisted state of one profile key
type Profile struct {
	ProfileKey  string  `gorm:"primaryKey;size:64"`
	IdentityID  *string `gorm:"size:64"`
	Email       *string `gorm:"size:254"`
	Username    *string `gorm:"size:32"`
	GamesPlayed int     `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Account is a registered player with a bcrypt password hash
type Account struct {
	ID           string `gorm:"primaryKey;size:64"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	Username     string `gorm:"size:32"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// Score is a finished round on the leaderboard
type Score struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Username  string         `gorm:"size:64;not null"`
	Score     int            `gorm:"not null;index:idx_scores_rank,priority:1,sort:desc"`
	Theme     string         `gorm:"size:128;not null;default:''"`
	Won       bool           `gorm:"not null;default:false"`
	Standings datatypes.JSON `gorm:"type:jsonb;not null"`
	PlayedAt  time.Time      `gorm:"not null;index:idx_scores_rank,priority:2,sort:desc"`
}

// identity returns the signed-in identity of the profile, or nil
func (p Profile) identity() *domain.Identity {
	if p.IdentityID == nil {
		return nil
	}
	return &domain.Identity{ID: *p.IdentityID, Email: deref(p.Email), Username: deref(p.Username)}
}

// StoredQuestion is a curated or previously generated question kept in Postgres
type StoredQuestion struct {
	ID            uint           `gorm:"primaryKey"`
	Theme         string         `gorm:"size:128;index;not null"`
	Category      string         `gorm:"size:128;not null"`
	Text          string         `gorm:"size:512;uniqueIndex;not null"`
	Options       datatypes.JSON `gorm:"type:jsonb;not null"`
	CorrectAnswer string         `gorm:"size:256;not null"`
	Difficulty    string         `gorm:"size:16;not null;default:'normal'"`
	CreatedAt     time.Time
}
