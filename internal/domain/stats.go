package domain

import "fmt"

// PowerUpKind names a one-shot ability
type PowerUpKind string

const (
	PowerUpHint         PowerUpKind = "hint"
	PowerUpSkip         PowerUpKind = "skip"
	PowerUpDoublePoints PowerUpKind = "doublePoints"
)

// Valid reports whether k is a known power-up
func (k PowerUpKind) Valid() bool {
	switch k {
	case PowerUpHint, PowerUpSkip, PowerUpDoublePoints:
		return true
	}
	return false
}

// PowerUpsUsed records which power-ups have been spent this round
type PowerUpsUsed struct {
	Hint         bool `json:"hint"`
	Skip         bool `json:"skip"`
	DoublePoints bool `json:"doublePoints"`
}

// Used reports whether the given power-up has been spent
func (u PowerUpsUsed) Used(kind PowerUpKind) bool {
	switch kind {
	case PowerUpHint:
		return u.Hint
	case PowerUpSkip:
		return u.Skip
	case PowerUpDoublePoints:
		return u.DoublePoints
	}
	return false
}

// Mark flags the given power-up as spent
func (u *PowerUpsUsed) Mark(kind PowerUpKind) {
	switch kind {
	case PowerUpHint:
		u.Hint = true
	case PowerUpSkip:
		u.Skip = true
	case PowerUpDoublePoints:
		u.DoublePoints = true
	}
}

// PlayerStats is the mutable per-round record of a player
type PlayerStats struct {
	Score              int          `json:"score"`
	Streak             int          `json:"streak"`
	PowerUpsUsed       PowerUpsUsed `json:"powerUpsUsed"`
	DoublePointsActive bool         `json:"isDoublePointsActive"`
}

// ApplyAnswer scores one answer attempt and returns the points awarded.
// Double points expire after the attempt whether or not it was correct.
func (s *PlayerStats) ApplyAnswer(correct bool) int {
	points := 0
	if correct {
		points = 1
		if s.DoublePointsActive {
			points = 2
		}
		s.Score += points
		s.Streak++
	} else {
		s.Streak = 0
	}
	s.DoublePointsActive = false
	return points
}

// checkTransition validates next against the previous record
func (s PlayerStats) checkTransition(next PlayerStats) error {
	switch {
	case next.Score < 0 || next.Streak < 0:
		return fmt.Errorf("%w: negative score or streak", ErrStatsInvariant)
	case next.Score < s.Score:
		return fmt.Errorf("%w: score decreased from %d to %d", ErrStatsInvariant, s.Score, next.Score)
	case s.PowerUpsUsed.Hint && !next.PowerUpsUsed.Hint,
		s.PowerUpsUsed.Skip && !next.PowerUpsUsed.Skip,
		s.PowerUpsUsed.DoublePoints && !next.PowerUpsUsed.DoublePoints:
		return fmt.Errorf("%w: power-up flag reverted", ErrStatsInvariant)
	case next.DoublePointsActive && !next.PowerUpsUsed.DoublePoints:
		return fmt.Errorf("%w: double points active without activation", ErrStatsInvariant)
	}
	return nil
}
