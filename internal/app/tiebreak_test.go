package app

import (
	"errors"
	"slices"
	"testing"
	"time"

	"trivia/internal/domain"
)

// tiedEnv plays a round nobody scores in, so every rostered player ties
func tiedEnv(t *testing.T, bots int, tieBreakAccuracy float64, loader *stubLoader) *testEnv {
	t.Helper()

	settings := testSettings()
	settings.MaxBots = bots
	settings.Bots.Accuracy = 0
	settings.TieBreak.Accuracy = tieBreakAccuracy

	env := newTestEnv(t, settings, loader)
	env.enterGame(t)
	env.sched.Advance(time.Duration(settings.RoundSeconds) * time.Second)
	return env
}

func TestTieBreakWrongHumanAnswerHandsItToBot(t *testing.T) {
	loader := &stubLoader{batch: makeQuestions("Space", 5), single: hardQuestion()}
	env := tiedEnv(t, 1, 1, loader)
	s := env.session

	snap := s.Snapshot()
	if snap.Screen != domain.ScreenSuddenDeath {
		t.Fatalf("expected SUDDEN_DEATH, got %s", snap.Screen)
	}
	if snap.SuddenDeath == nil || snap.SuddenDeath.Question == nil || len(snap.SuddenDeath.Pool) != 2 {
		t.Fatalf("expected a loaded two-player tie-break, got %+v", snap.SuddenDeath)
	}
	if !slices.Contains(loader.exclude, makeQuestions("Space", 1)[0].Text) {
		t.Fatalf("tie-break fetch should exclude asked questions, got %v", loader.exclude)
	}

	if err := s.Answer("Enceladus"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	snap = s.Snapshot()
	if snap.Screen != domain.ScreenScore {
		t.Fatalf("expected SCORE, got %s", snap.Screen)
	}
	if snap.Outcome == nil || snap.Outcome.WinnerID != "bot1" || !snap.Outcome.ViaTieBreak {
		t.Fatalf("expected bot1 to win the tie-break, got %+v", snap.Outcome)
	}
	if snap.Stats["bot1"].Score != 1 || humanStats(t, snap).Score != 0 {
		t.Fatalf("winner should gain exactly one point: %+v", snap.Stats)
	}
	if env.sched.Live() != 0 {
		t.Fatalf("bot attempt should be cancelled, %d timers live", env.sched.Live())
	}
	if snap.GamesPlayed != 1 {
		t.Fatalf("expected one game played, got %d", snap.GamesPlayed)
	}
	env.cues.waitFor(t, domain.CueLose)
}

func TestTieBreakCorrectHumanWins(t *testing.T) {
	loader := &stubLoader{batch: makeQuestions("Space", 5), single: hardQuestion()}
	env := tiedEnv(t, 2, 0, loader)
	s := env.session

	if err := s.Answer("Titan"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Outcome.HumanWon() || humanStats(t, snap).Score != 1 {
		t.Fatalf("expected the human to win with one point, got %+v %+v", snap.Outcome, humanStats(t, snap))
	}
	if err := s.Answer("Titan"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("tie-break is over, got %v", err)
	}
	env.cues.waitFor(t, domain.CueWin)
}

func TestTieBreakWaitsForHumanWhenBotsMiss(t *testing.T) {
	loader := &stubLoader{batch: makeQuestions("Space", 5), single: hardQuestion()}
	env := tiedEnv(t, 1, 0, loader)
	s := env.session

	env.sched.Advance(5 * time.Second)
	snap := s.Snapshot()
	if snap.Screen != domain.ScreenSuddenDeath || snap.SuddenDeath.PendingBots != 0 {
		t.Fatalf("expected to wait for the human, got %s %+v", snap.Screen, snap.SuddenDeath)
	}

	if err := s.Answer("Titan"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !s.Snapshot().Outcome.HumanWon() {
		t.Fatalf("expected the human to win")
	}
}

func TestTieBreakFirstCorrectBotWins(t *testing.T) {
	loader := &stubLoader{batch: makeQuestions("Space", 5), single: hardQuestion()}
	env := tiedEnv(t, 3, 1, loader)
	s := env.session

	env.sched.Advance(5 * time.Second)
	snap := s.Snapshot()
	if snap.Screen != domain.ScreenScore || snap.Outcome == nil {
		t.Fatalf("expected a bot to take the tie-break, got %s", snap.Screen)
	}
	winner := snap.Outcome.WinnerID
	if winner == domain.HumanPlayerID || snap.Stats[winner].Score != 1 {
		t.Fatalf("expected one bot with one point, got %q %+v", winner, snap.Stats)
	}

	leaders := 0
	for _, st := range snap.Stats {
		if st.Score == 1 {
			leaders++
		}
	}
	if leaders != 1 {
		t.Fatalf("score screen should show a unique leader, got %d", leaders)
	}
}

func TestTieBreakWithoutHumanNeverStalls(t *testing.T) {
	settings := testSettings()
	settings.MaxBots = 2
	settings.Bots.Accuracy = 1
	settings.TieBreak.Accuracy = 0

	loader := &stubLoader{batch: makeQuestions("Space", 5), single: hardQuestion()}
	env := newTestEnv(t, settings, loader)
	env.enterGame(t)
	env.sched.Advance(60 * time.Second)
	s := env.session

	snap := s.Snapshot()
	if snap.Screen != domain.ScreenSuddenDeath || snap.SuddenDeath.InPool(domain.HumanPlayerID) {
		t.Fatalf("expected a bots-only tie-break, got %s %+v", snap.Screen, snap.SuddenDeath)
	}
	if err := s.Answer("Titan"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("human is not in the pool, got %v", err)
	}

	env.sched.Advance(settings.TieBreak.MaxDelay)
	snap = s.Snapshot()
	if snap.Screen != domain.ScreenScore || snap.Outcome.WinnerID != "bot1" {
		t.Fatalf("first pool member should win by default, got %s %+v", snap.Screen, snap.Outcome)
	}
	if snap.Stats["bot1"].Score != 2 {
		t.Fatalf("expected bot1 on 2 points, got %+v", snap.Stats["bot1"])
	}
}

func TestTieBreakFetchFailureIsShared(t *testing.T) {
	loader := &stubLoader{batch: makeQuestions("Space", 5), singleErr: domain.ErrQuestionSupply}
	env := tiedEnv(t, 1, 1, loader)

	snap := env.session.Snapshot()
	if snap.Screen != domain.ScreenScore {
		t.Fatalf("expected SCORE after a failed fetch, got %s", snap.Screen)
	}
	if snap.Outcome == nil || !snap.Outcome.Shared || snap.Outcome.WinnerID != "" {
		t.Fatalf("expected a shared outcome, got %+v", snap.Outcome)
	}
	if snap.GamesPlayed != 1 {
		t.Fatalf("expected one game played, got %d", snap.GamesPlayed)
	}
}
