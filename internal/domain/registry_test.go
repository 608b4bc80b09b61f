package domain

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T, bots int) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.AddPlayer(NewHumanPlayer("Guest @ Station")); err != nil {
		t.Fatalf("add human: %v", err)
	}
	for i := 1; i <= bots; i++ {
		if err := reg.AddPlayer(NewBotPlayer(i, BotNames[i], BotColors[i])); err != nil {
			t.Fatalf("add bot %d: %v", i, err)
		}
	}
	return reg
}

func TestRegistryAddPlayerCreatesStats(t *testing.T) {
	reg := newTestRegistry(t, 2)

	if reg.Len() != 3 {
		t.Fatalf("expected 3 players, got %d", reg.Len())
	}
	for _, p := range reg.Players() {
		if _, err := reg.Stats(p.ID); err != nil {
			t.Fatalf("missing stats for %s: %v", p.ID, err)
		}
	}
	if err := reg.AddPlayer(NewHumanPlayer("again")); !errors.Is(err, ErrPlayerExists) {
		t.Fatalf("expected ErrPlayerExists, got %v", err)
	}
}

func TestRegistryRejectsFourthBot(t *testing.T) {
	reg := newTestRegistry(t, MaxBots)
	err := reg.AddPlayer(NewBotPlayer(MaxBots+1, "Extra", "teal"))
	if !errors.Is(err, ErrRosterFull) {
		t.Fatalf("expected ErrRosterFull, got %v", err)
	}
}

func TestUpdateStatsEnforcesInvariants(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*PlayerStats)
	}{
		{name: "negative streak", fn: func(s *PlayerStats) { s.Streak = -1 }},
		{name: "score decrease", fn: func(s *PlayerStats) { s.Score-- }},
		{name: "flag revert", fn: func(s *PlayerStats) { s.PowerUpsUsed.Hint = false }},
		{name: "double without activation", fn: func(s *PlayerStats) {
			s.PowerUpsUsed.DoublePoints = false
			s.DoublePointsActive = true
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := newTestRegistry(t, 0)
			if err := reg.UpdateStats(HumanPlayerID, func(s *PlayerStats) {
				s.Score = 3
				s.PowerUpsUsed.Hint = true
			}); err != nil {
				t.Fatalf("seed stats: %v", err)
			}
			before, _ := reg.Stats(HumanPlayerID)

			err := reg.UpdateStats(HumanPlayerID, tc.fn)
			if !errors.Is(err, ErrStatsInvariant) {
				t.Fatalf("expected ErrStatsInvariant, got %v", err)
			}
			after, _ := reg.Stats(HumanPlayerID)
			if after != before {
				t.Fatalf("stats changed on rejected update: %+v -> %+v", before, after)
			}
		})
	}
}

func TestUpdateStatsUnknownPlayer(t *testing.T) {
	reg := newTestRegistry(t, 0)
	if err := reg.UpdateStats("bot9", func(*PlayerStats) {}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestApplyAnswerDoublePointsExpiresAfterOneAttempt(t *testing.T) {
	for _, correct := range []bool{true, false} {
		s := PlayerStats{PowerUpsUsed: PowerUpsUsed{DoublePoints: true}, DoublePointsActive: true}
		points := s.ApplyAnswer(correct)
		if s.DoublePointsActive {
			t.Fatalf("double points still active after answer (correct=%v)", correct)
		}
		want := 0
		if correct {
			want = 2
		}
		if points != want || s.Score != want {
			t.Fatalf("correct=%v: expected %d points, got %d (score %d)", correct, want, points, s.Score)
		}
	}
}

func TestApplyAnswerStreak(t *testing.T) {
	var s PlayerStats
	s.ApplyAnswer(true)
	s.ApplyAnswer(true)
	if s.Streak != 2 || s.Score != 2 {
		t.Fatalf("expected streak 2 score 2, got %+v", s)
	}
	s.ApplyAnswer(false)
	if s.Streak != 0 || s.Score != 2 {
		t.Fatalf("expected streak reset with score kept, got %+v", s)
	}
}

func TestLeaders(t *testing.T) {
	reg := newTestRegistry(t, 2)
	_ = reg.UpdateStats(HumanPlayerID, func(s *PlayerStats) { s.Score = 4 })
	_ = reg.UpdateStats("bot2", func(s *PlayerStats) { s.Score = 4 })
	_ = reg.UpdateStats("bot1", func(s *PlayerStats) { s.Score = 1 })

	leaders := reg.Leaders()
	if len(leaders) != 2 || leaders[0].ID != HumanPlayerID || leaders[1].ID != "bot2" {
		t.Fatalf("unexpected leaders: %+v", leaders)
	}
}
