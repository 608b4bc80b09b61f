// Package storage persists identities, play counters, accounts and scores.
//
// Three backends share one contract: Memory for tests and single-process
// runs, SQLite for a local file and Gorm for Postgres. All of them are
// best-effort from the game's point of view.
package storage

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"trivia/internal/domain"
)

// DefaultTopScores is used when a caller asks for a non-positive limit
const DefaultTopScores = 10

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	return nil
}

// newAccount validates credentials and builds the identity and password hash
func newAccount(creds domain.Credentials) (domain.Identity, string, error) {
	if err := creds.Validate(); err != nil {
		return domain.Identity{}, "", err
	}

	hash, err := hashPassword(creds.Password)
	if err != nil {
		return domain.Identity{}, "", err
	}

	id := domain.Identity{
		ID:       uuid.NewString(),
		Email:    normalizeEmail(creds.Email),
		Username: strings.TrimSpace(creds.Username),
	}
	return id, hash, id.Validate()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultTopScores
	}
	return limit
}
