package app

import (
	"context"
	"fmt"

	"trivia/internal/domain"
)

// startSuddenDeath opens the tie-break among the tied leaders and fetches
// its hard question in the background.
func (s *GameSession) startSuddenDeath(pool []domain.Player) {
	if err := s.transition(domain.ScreenSuddenDeath); err != nil {
		s.logger.Error("failed to start sudden death", "error", err)
		return
	}
	s.round.SuddenDeath = &domain.SuddenDeath{Pool: pool}

	number, ctx := s.round.Number, s.roundCtx
	theme, exclude := s.round.Theme, s.round.Queue.Asked()
	s.later(func() { s.loadTieBreak(ctx, number, theme, exclude) })
}

func (s *GameSession) loadTieBreak(ctx context.Context, number uint64, theme string, exclude []string) {
	q, err := s.questions.LoadSingle(ctx, theme, exclude, domain.DifficultyHard)

	s.mu.Lock()
	defer s.unlock()

	if !s.current(number) || s.round.Screen != domain.ScreenSuddenDeath || s.round.Outcome != nil {
		return
	}

	if err != nil {
		s.logger.Warn("tie-break shared", "error", fmt.Errorf("%w: %w", domain.ErrTieBreakUnresolved, err))
		s.finish(domain.Outcome{Shared: true, ViaTieBreak: true})
		return
	}

	sd := s.round.SuddenDeath
	sd.Question = &q

	var bots []domain.Player
	for _, p := range sd.Pool {
		if p.IsBot {
			bots = append(bots, p)
		}
	}
	sd.PendingBots = len(bots)

	s.queueEvent(domain.EventSuddenDeathStarted, &domain.SuddenDeathPayload{Pool: sd.Pool, Question: q})

	// Attempts race; the first correct callback to take the lock wins.
	for _, a := range s.bots.Plan(s.settings.TieBreak, bots, q) {
		s.questionTimers.add(s.scheduler.AfterFunc(a.Delay, func() {
			s.onTieBreakAttempt(number, a)
		}))
	}
}

func (s *GameSession) onTieBreakAttempt(number uint64, a BotAttempt) {
	s.mu.Lock()
	defer s.unlock()

	if !s.current(number) || s.round.Screen != domain.ScreenSuddenDeath || s.round.Outcome != nil {
		s.logger.Debug("stale tie-break attempt dropped", "bot", a.BotID)
		return
	}

	sd := s.round.SuddenDeath
	sd.PendingBots--
	s.queueEvent(domain.EventAnswered, &domain.AnsweredPayload{
		PlayerID: a.BotID,
		Answer:   a.Answer,
		Correct:  a.Correct,
	})

	if a.Correct {
		s.resolveTieBreak(a.BotID)
		return
	}

	// With no human to wait for, the first pool member takes it
	if sd.PendingBots <= 0 && !sd.InPool(domain.HumanPlayerID) {
		s.resolveTieBreak(sd.Pool[0].ID)
	}
}

// answerTieBreak handles the human's answer to the sudden death question
func (s *GameSession) answerTieBreak(option string) error {
	sd := s.round.SuddenDeath
	if sd == nil || sd.Question == nil {
		return domain.ErrNotReady
	}
	if !sd.InPool(domain.HumanPlayerID) {
		return fmt.Errorf("%w: not in the tie-break", domain.ErrPlayerNotFound)
	}
	if sd.HumanAnswered {
		return domain.ErrAlreadyAnswered
	}
	if !sd.Question.HasOption(option) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAnswer, option)
	}

	sd.HumanAnswered = true
	correct := sd.Question.IsCorrect(option)
	s.queueEvent(domain.EventAnswered, &domain.AnsweredPayload{
		PlayerID: domain.HumanPlayerID,
		Answer:   option,
		Correct:  correct,
	})

	if correct {
		s.cue(domain.CueCorrect)
		s.resolveTieBreak(domain.HumanPlayerID)
		return nil
	}

	s.cue(domain.CueIncorrect)
	if p, ok := sd.FirstNonHuman(); ok {
		s.resolveTieBreak(p.ID)
	} else {
		s.resolveTieBreak(sd.Pool[0].ID)
	}
	return nil
}

// resolveTieBreak awards the tie-break and shows the score screen
func (s *GameSession) resolveTieBreak(winnerID string) {
	reg := s.round.Registry
	winner, err := reg.Player(winnerID)
	if err != nil {
		s.logger.Error("tie-break winner not rostered", "player", winnerID, "error", err)
		s.finish(domain.Outcome{Shared: true, ViaTieBreak: true})
		return
	}

	if err := reg.UpdateStats(winnerID, func(st *domain.PlayerStats) { st.Score++ }); err != nil {
		s.logger.Error("tie-break bonus rejected", "player", winnerID, "error", err)
	}

	s.finish(domain.Outcome{
		WinnerID:    winner.ID,
		WinnerName:  winner.DisplayName,
		ViaTieBreak: true,
	})
}
