package domain

import (
	"fmt"
	"strings"
)

// Identity is the persisted sign-in state of the player
type Identity struct {
	ID       string `json:"id" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Username string `json:"username,omitempty" validate:"omitempty,min=2,max=32"`
}

// Validate checks the identity at the persistence boundary
func (i Identity) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return nil
}

// DisplayName returns the name shown in the roster
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	if local, _, ok := strings.Cut(i.Email, "@"); ok && local != "" {
		return local
	}
	return "Player"
}

// Credentials are submitted on signup and login
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username,omitempty" validate:"omitempty,min=2,max=32"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Validate checks the credential fields
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return nil
}
