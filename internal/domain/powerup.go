package domain

import "math/rand"

// HintRemoves is how many incorrect options a hint disables
const HintRemoves = 2

// PowerUpEffect describes what the caller has to do after a power-up applied
type PowerUpEffect struct {
	Kind     PowerUpKind `json:"kind"`
	Disabled []string    `json:"disabled,omitempty"`
	Skip     bool        `json:"skip,omitempty"`
}

// PowerUpEngine validates and applies power-ups against the current turn
type PowerUpEngine struct {
	rng *rand.Rand
}

// NewPowerUpEngine creates an engine drawing hint choices from rng
func NewPowerUpEngine(rng *rand.Rand) *PowerUpEngine {
	return &PowerUpEngine{rng: rng}
}

// Use applies kind for playerID. Any misuse returns ErrInvalidPowerUpUse and
// leaves stats and turn untouched.
func (e *PowerUpEngine) Use(reg *Registry, turn *QuestionTurn, playerID string, kind PowerUpKind) (PowerUpEffect, error) {
	if !kind.Valid() || turn == nil || turn.Answered {
		return PowerUpEffect{}, ErrInvalidPowerUpUse
	}

	player, err := reg.Player(playerID)
	if err != nil || player.IsBot {
		return PowerUpEffect{}, ErrInvalidPowerUpUse
	}

	stats, err := reg.Stats(playerID)
	if err != nil || stats.PowerUpsUsed.Used(kind) {
		return PowerUpEffect{}, ErrInvalidPowerUpUse
	}

	effect := PowerUpEffect{Kind: kind}
	switch kind {
	case PowerUpHint:
		if len(turn.Disabled) > 0 {
			return PowerUpEffect{}, ErrInvalidPowerUpUse
		}
		effect.Disabled = e.pickHint(turn.Question)
	case PowerUpSkip:
		effect.Skip = true
	}

	err = reg.UpdateStats(playerID, func(s *PlayerStats) {
		s.PowerUpsUsed.Mark(kind)
		if kind == PowerUpDoublePoints {
			s.DoublePointsActive = true
		}
	})
	if err != nil {
		return PowerUpEffect{}, ErrInvalidPowerUpUse
	}

	if kind == PowerUpHint {
		turn.Disabled = effect.Disabled
	}
	return effect, nil
}

// pickHint chooses HintRemoves incorrect options uniformly at random
func (e *PowerUpEngine) pickHint(q TriviaQuestion) []string {
	wrong := q.IncorrectOptions()
	n := min(HintRemoves, len(wrong))

	out := make([]string, 0, n)
	for _, i := range e.rng.Perm(len(wrong))[:n] {
		out = append(out, wrong[i])
	}
	return out
}
