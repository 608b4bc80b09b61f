package app

import (
	"math/rand"
	"time"

	"trivia/internal/domain"
)

// BotProfile is the timing and accuracy model of simulated opponents
type BotProfile struct {
	Accuracy float64
	MinDelay time.Duration
	MaxDelay time.Duration
}

// BotAttempt is one planned answer of a bot
type BotAttempt struct {
	BotID   string
	Delay   time.Duration
	Correct bool
	Answer  string
}

// BotSimulator plans bot answers. It draws from the session's rng and is
// only used under the session lock.
type BotSimulator struct {
	rng *rand.Rand
}

// NewBotSimulator creates a simulator drawing from rng
func NewBotSimulator(rng *rand.Rand) *BotSimulator {
	return &BotSimulator{rng: rng}
}

// Plan draws one delayed answer per bot for question q
func (b *BotSimulator) Plan(profile BotProfile, bots []domain.Player, q domain.TriviaQuestion) []BotAttempt {
	attempts := make([]BotAttempt, 0, len(bots))
	for _, bot := range bots {
		correct := b.rng.Float64() < profile.Accuracy
		attempts = append(attempts, BotAttempt{
			BotID:   bot.ID,
			Delay:   b.delay(profile.MinDelay, profile.MaxDelay),
			Correct: correct,
			Answer:  b.pickAnswer(q, correct),
		})
	}
	return attempts
}

// delay draws uniformly from [lo, hi]
func (b *BotSimulator) delay(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(b.rng.Int63n(int64(hi-lo)+1))
}

func (b *BotSimulator) pickAnswer(q domain.TriviaQuestion, correct bool) string {
	if correct {
		return q.CorrectAnswer
	}
	wrong := q.IncorrectOptions()
	if len(wrong) == 0 {
		return ""
	}
	return wrong[b.rng.Intn(len(wrong))]
}
