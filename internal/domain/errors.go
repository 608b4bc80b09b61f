package domain

import "errors"

// Domain errors
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidTransition  = errors.New("invalid screen transition")
	ErrNotReady           = errors.New("lobby is not ready")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerExists       = errors.New("player already in roster")
	ErrRosterFull         = errors.New("roster is full")
	ErrStatsInvariant     = errors.New("stats update violates invariants")
	ErrInvalidPowerUpUse  = errors.New("power-up cannot be used now")
	ErrQueueExhausted     = errors.New("question queue exhausted")
	ErrQuestionSupply     = errors.New("question supply failed")
	ErrTieBreakUnresolved = errors.New("tie-break could not be resolved")
	ErrInvalidQuestion    = errors.New("invalid trivia question")
	ErrInvalidAnswer      = errors.New("answer is not one of the options")
	ErrAlreadyAnswered    = errors.New("question already answered")
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
)
