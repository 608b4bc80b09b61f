package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trivia/internal/domain"
)

// issueQuestion puts the queue's current question in front of the players
// and plans the bot answers. An empty queue ends the round.
func (s *GameSession) issueQuestion() {
	s.questionTimers.stopAll()

	turn, ok := s.round.IssueCurrent()
	if !ok {
		s.endRound()
		return
	}

	s.queueEvent(domain.EventQuestionIssued, &domain.QuestionPayload{
		Generation: turn.Generation,
		Question:   turn.Question,
		Remaining:  s.round.Queue.Remaining(),
	})

	number, gen := s.round.Number, turn.Generation
	for _, a := range s.bots.Plan(s.settings.Bots, s.round.Registry.Bots(), turn.Question) {
		s.questionTimers.add(s.scheduler.AfterFunc(a.Delay, func() {
			s.onBotAnswer(number, gen, a)
		}))
	}
}

// liveTurn reports whether a callback for question generation gen of round
// number still targets the question on screen
func (s *GameSession) liveTurn(number, gen uint64) bool {
	return s.current(number) &&
		s.round.Screen == domain.ScreenGame &&
		s.round.Turn != nil &&
		s.round.Turn.Generation == gen
}

func (s *GameSession) onBotAnswer(number, gen uint64, a BotAttempt) {
	s.mu.Lock()
	defer s.unlock()

	if !s.liveTurn(number, gen) {
		s.logger.Debug("stale bot answer dropped", "bot", a.BotID, "generation", gen)
		return
	}
	s.score(a.BotID, a.Answer, a.Correct)
}

// score applies one answer to playerID's stats (caller must hold lock)
func (s *GameSession) score(playerID, answer string, correct bool) {
	reg := s.round.Registry

	var points int
	err := reg.UpdateStats(playerID, func(st *domain.PlayerStats) {
		points = st.ApplyAnswer(correct)
	})
	if err != nil {
		s.logger.Error("stats update rejected", "player", playerID, "error", err)
		return
	}

	stats, _ := reg.Stats(playerID)
	s.queueEvent(domain.EventAnswered, &domain.AnsweredPayload{
		PlayerID: playerID,
		Answer:   answer,
		Correct:  correct,
		Points:   points,
		Stats:    stats,
	})
}

// Answer submits the human's answer to the question on screen
func (s *GameSession) Answer(option string) error {
	s.mu.Lock()
	defer s.unlock()

	s.touch()
	switch s.round.Screen {
	case domain.ScreenGame:
		return s.answerQuestion(option)
	case domain.ScreenSuddenDeath:
		return s.answerTieBreak(option)
	default:
		return fmt.Errorf("%w: answer on %s", domain.ErrInvalidTransition, s.round.Screen)
	}
}

func (s *GameSession) answerQuestion(option string) error {
	turn := s.round.Turn
	if turn == nil {
		return domain.ErrNotReady
	}
	if turn.Answered {
		return domain.ErrAlreadyAnswered
	}
	if !turn.Question.HasOption(option) || turn.IsDisabled(option) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAnswer, option)
	}

	turn.Answered = true
	turn.Selected = option

	correct := turn.Question.IsCorrect(option)
	s.score(domain.HumanPlayerID, option, correct)
	if correct {
		s.cue(domain.CueCorrect)
	} else {
		s.cue(domain.CueIncorrect)
	}

	s.scheduleAdvance(turn.Generation)
	return nil
}

// scheduleAdvance moves on after the post-answer pause
func (s *GameSession) scheduleAdvance(gen uint64) {
	if s.settings.PostAnswerDelay <= 0 {
		s.advance()
		return
	}

	number := s.round.Number
	s.questionTimers.add(s.scheduler.AfterFunc(s.settings.PostAnswerDelay, func() {
		s.onAdvance(number, gen)
	}))
}

func (s *GameSession) onAdvance(number, gen uint64) {
	s.mu.Lock()
	defer s.unlock()

	if !s.liveTurn(number, gen) {
		return
	}
	s.advance()
}

// advance pops the next question. Exhausting the queue ends the round.
func (s *GameSession) advance() {
	s.questionTimers.stopAll()

	if _, err := s.round.Queue.Advance(); err != nil {
		if errors.Is(err, domain.ErrQueueExhausted) {
			s.logger.Debug("question queue exhausted", "round", s.round.Number)
		}
		s.round.ClearTurn()
		s.endRound()
		return
	}
	s.issueQuestion()
}

// UsePowerUp spends one of the human's power-ups on the question on screen.
// Misuse is a silent no-op; the boolean reports whether anything happened.
func (s *GameSession) UsePowerUp(kind domain.PowerUpKind) (domain.PowerUpEffect, bool) {
	s.mu.Lock()
	defer s.unlock()

	s.touch()
	if s.round.Screen != domain.ScreenGame {
		s.logger.Debug("power-up ignored", "kind", kind, "screen", s.round.Screen)
		return domain.PowerUpEffect{}, false
	}

	effect, err := s.powerUps.Use(s.round.Registry, s.round.Turn, domain.HumanPlayerID, kind)
	if err != nil {
		s.logger.Debug("power-up ignored", "kind", kind, "error", err)
		return domain.PowerUpEffect{}, false
	}

	stats, _ := s.round.Registry.Stats(domain.HumanPlayerID)
	s.queueEvent(domain.EventPowerUpUsed, &domain.PowerUpPayload{Effect: effect, Stats: stats})

	if effect.Skip {
		s.cue(domain.CueSkip)
		s.advance()
	} else {
		s.cue(domain.CuePowerUp)
	}
	return effect, true
}

func (s *GameSession) scheduleTick(number uint64) {
	s.roundTimers.add(s.scheduler.AfterFunc(time.Second, func() {
		s.onTick(number)
	}))
}

func (s *GameSession) onTick(number uint64) {
	s.mu.Lock()
	defer s.unlock()

	if !s.current(number) || s.round.Screen != domain.ScreenGame || s.round.Resolved {
		return
	}

	left := s.round.Tick()
	s.queueEvent(domain.EventTick, &domain.TickPayload{TimeLeft: left})
	if left == 0 {
		s.endRound()
		return
	}
	s.scheduleTick(number)
}

// endRound resolves the round exactly once
func (s *GameSession) endRound() {
	if !s.round.Resolve() {
		return
	}

	s.roundTimers.stopAll()
	s.questionTimers.stopAll()
	if s.round.Turn != nil {
		s.round.ClearTurn()
	}

	s.gamesPlayed++
	s.persist("increment games played", func(ctx context.Context) error {
		_, err := s.store.IncrementGamesPlayed(ctx, s.profile)
		return err
	})

	reg := s.round.Registry
	leaders := reg.Leaders()
	s.queueEvent(domain.EventRoundEnded, &domain.RoundEndedPayload{
		Leaders: leaders,
		Stats:   reg.AllStats(),
	})
	s.logger.Info("round ended", "round", s.round.Number, "leaders", len(leaders))

	if len(leaders) > 1 {
		s.startSuddenDeath(leaders)
		return
	}

	winner := leaders[0]
	s.finish(domain.Outcome{WinnerID: winner.ID, WinnerName: winner.DisplayName})
}

// finish records the outcome and moves to SCORE
func (s *GameSession) finish(o domain.Outcome) {
	s.roundTimers.stopAll()
	s.questionTimers.stopAll()

	s.round.Outcome = &o
	if err := s.transition(domain.ScreenScore); err != nil {
		s.logger.Error("failed to show score", "error", err)
		return
	}

	if o.ViaTieBreak {
		s.queueEvent(domain.EventTieBreakResolved, &domain.OutcomePayload{
			Outcome: o,
			Stats:   s.round.Registry.AllStats(),
		})
	}

	won := o.HumanWon()
	if o.Shared && s.round.SuddenDeath != nil {
		won = s.round.SuddenDeath.InPool(domain.HumanPlayerID)
	}
	if won {
		s.cue(domain.CueWin)
	} else {
		s.cue(domain.CueLose)
	}

	s.saveScore(won)
}

// saveScore queues the human's final line for the leaderboard
func (s *GameSession) saveScore(won bool) {
	reg := s.round.Registry
	human, err := reg.Player(domain.HumanPlayerID)
	if err != nil {
		return
	}
	stats, _ := reg.Stats(domain.HumanPlayerID)

	entry := domain.ScoreEntry{
		ID:        uuid.NewString(),
		Username:  human.DisplayName,
		Score:     stats.Score,
		Theme:     s.round.Theme,
		Won:       won,
		Standings: reg.Standings(),
		PlayedAt:  time.Now().UTC(),
	}
	s.persist("save score", func(ctx context.Context) error {
		return s.store.SaveScore(ctx, entry)
	})
}
