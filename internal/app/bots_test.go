package app

import (
	"math/rand"
	"testing"
	"time"

	"trivia/internal/config"
	"trivia/internal/domain"
)

func TestBotPlanStaysInProfile(t *testing.T) {
	sim := NewBotSimulator(rand.New(rand.NewSource(3)))
	profile := BotProfile{Accuracy: 0.5, MinDelay: time.Second, MaxDelay: 2 * time.Second}
	bots := []domain.Player{
		domain.NewBotPlayer(1, "QuizWhiz", "pink"),
		domain.NewBotPlayer(2, "BusPro", "lime"),
	}
	q := makeQuestions("Space", 1)[0]

	correct := 0
	for i := 0; i < 200; i++ {
		plan := sim.Plan(profile, bots, q)
		if len(plan) != len(bots) {
			t.Fatalf("expected %d attempts, got %d", len(bots), len(plan))
		}
		for j, a := range plan {
			if a.BotID != bots[j].ID {
				t.Fatalf("attempt %d belongs to %s, want %s", j, a.BotID, bots[j].ID)
			}
			if a.Delay < profile.MinDelay || a.Delay > profile.MaxDelay {
				t.Fatalf("delay %v outside [%v, %v]", a.Delay, profile.MinDelay, profile.MaxDelay)
			}
			if a.Correct != q.IsCorrect(a.Answer) {
				t.Fatalf("answer %q does not match correct=%v", a.Answer, a.Correct)
			}
			if !q.HasOption(a.Answer) {
				t.Fatalf("answer %q is not an option", a.Answer)
			}
			if a.Correct {
				correct++
			}
		}
	}

	// 400 draws at p=0.5
	if correct < 140 || correct > 260 {
		t.Fatalf("accuracy looks off: %d/400 correct", correct)
	}
}

func TestBotDelayDegenerateRange(t *testing.T) {
	sim := NewBotSimulator(rand.New(rand.NewSource(1)))
	if d := sim.delay(time.Second, time.Second); d != time.Second {
		t.Fatalf("expected the lower bound, got %v", d)
	}
	if d := sim.delay(2*time.Second, time.Second); d != 2*time.Second {
		t.Fatalf("expected the lower bound on an inverted range, got %v", d)
	}
}

func TestSettingsFromConfigClampsBots(t *testing.T) {
	cfg := config.Load().Game
	cfg.MaxBots = 9
	if got := SettingsFromConfig(cfg).MaxBots; got != domain.MaxBots {
		t.Fatalf("MaxBots = %d, want %d", got, domain.MaxBots)
	}

	cfg.MaxBots = -1
	if got := SettingsFromConfig(cfg).MaxBots; got != 0 {
		t.Fatalf("MaxBots = %d, want 0", got)
	}
}
