package app

import (
	"context"
	"fmt"
	"slices"

	"trivia/internal/domain"
)

// CreateGame leaves HOME for a fresh LOBBY. A guest game forgets the
// persisted identity first.
func (s *GameSession) CreateGame(guest bool) error {
	s.mu.Lock()
	defer s.unlock()

	if s.closed {
		return domain.ErrSessionNotFound
	}
	if s.round.Screen != domain.ScreenHome {
		return fmt.Errorf("%w: create game from %s", domain.ErrInvalidTransition, s.round.Screen)
	}
	s.touch()

	if guest && s.identity != nil {
		s.identity = nil
		s.identityTouched = true
		s.persist("clear identity", func(ctx context.Context) error {
			return s.store.ClearSessionIdentity(ctx, s.profile)
		})
		s.queueEvent(domain.EventIdentityChanged, nil)
	}

	if !s.audioReady {
		s.audioReady = true
		s.audio.Muted = false
		s.queueEvent(domain.EventAudioChanged, s.audio)
	}

	if err := s.startLobby(); err != nil {
		return err
	}
	s.cue(domain.CueStart)
	return nil
}

// startLobby resets the round and starts matchmaking and loading (caller must hold lock)
func (s *GameSession) startLobby() error {
	from := s.round.Screen
	if !from.CanTransitionTo(domain.ScreenLobby) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, domain.ScreenLobby)
	}

	s.cancelRound()

	number := s.round.Number + 1
	human := domain.NewHumanPlayer(s.humanName())
	s.round = domain.NewRoundState(number, human, s.settings.RoundSeconds)
	s.round.Loading = true

	ctx, cancel := context.WithCancel(context.Background())
	s.roundCtx = ctx
	s.roundCancel = cancel

	s.botNames = slices.Clone(domain.BotNames)
	s.rng.Shuffle(len(s.botNames), func(i, j int) { s.botNames[i], s.botNames[j] = s.botNames[j], s.botNames[i] })
	s.botColors = slices.Clone(domain.BotColors)
	s.rng.Shuffle(len(s.botColors), func(i, j int) { s.botColors[i], s.botColors[j] = s.botColors[j], s.botColors[i] })

	s.queueEvent(domain.EventScreenChanged, &domain.ScreenPayload{From: from, To: domain.ScreenLobby})
	s.logger.Info("lobby opened", "round", number, "player", human.DisplayName)

	s.scheduleMatchmaking(number)
	s.later(func() { s.loadRound(ctx, number) })
	return nil
}

func (s *GameSession) humanName() string {
	if s.identity != nil {
		return s.identity.DisplayName()
	}
	loc := domain.TransitLocations[s.rng.Intn(len(domain.TransitLocations))]
	return domain.GuestName(loc)
}

// scheduleMatchmaking arms the matchmaking timeout and the bot arrivals
func (s *GameSession) scheduleMatchmaking(number uint64) {
	s.roundTimers.add(s.scheduler.AfterFunc(s.settings.MatchmakingTimeout, func() {
		s.onMatchmakingTimeout(number)
	}))

	for i := 0; i < s.settings.MaxBots; i++ {
		d := s.bots.delay(s.settings.BotJoinMinDelay, s.settings.BotJoinMaxDelay)
		s.roundTimers.add(s.scheduler.AfterFunc(d, func() {
			s.onBotArrival(number)
		}))
	}
}

func (s *GameSession) onBotArrival(number uint64) {
	s.mu.Lock()
	defer s.unlock()

	if !s.current(number) || s.round.Screen != domain.ScreenLobby || s.round.MatchmakingDone {
		return
	}

	reg := s.round.Registry
	n := reg.BotCount() + 1
	bot := domain.NewBotPlayer(n, s.botNames[(n-1)%len(s.botNames)], s.botColors[(n-1)%len(s.botColors)])
	if err := reg.AddPlayer(bot); err != nil {
		s.logger.Debug("bot arrival rejected", "error", err)
		return
	}

	s.queueEvent(domain.EventPlayerJoined, &domain.PlayerJoinedPayload{
		Player:  bot,
		Players: reg.Players(),
	})

	if reg.BotCount() >= s.settings.MaxBots {
		s.finishMatchmaking()
	}
}

func (s *GameSession) onMatchmakingTimeout(number uint64) {
	s.mu.Lock()
	defer s.unlock()

	if !s.current(number) || s.round.Screen != domain.ScreenLobby {
		return
	}
	s.finishMatchmaking()
}

// finishMatchmaking closes the lobby to further arrivals
func (s *GameSession) finishMatchmaking() {
	if s.round.MatchmakingDone {
		return
	}
	s.round.MatchmakingDone = true
	s.queueEvent(domain.EventMatchmakingDone, s.round.Registry.Players())
}

// loadRound picks the theme and fills the question queue of round number
func (s *GameSession) loadRound(ctx context.Context, number uint64) {
	theme := s.themes.Theme(ctx)

	s.mu.Lock()
	if !s.current(number) || ctx.Err() != nil {
		s.unlock()
		return
	}
	s.round.Theme = theme
	s.unlock()

	qs, err := s.questions.LoadBatch(ctx, theme, s.settings.BatchSize)

	s.mu.Lock()
	defer s.unlock()

	if !s.current(number) || ctx.Err() != nil || s.round.Screen != domain.ScreenLobby {
		return
	}

	s.round.Loading = false
	if err != nil {
		s.round.LoadError = err.Error()
		s.logger.Error("failed to load questions", "theme", theme, "error", err)
		s.queueEvent(domain.EventLoadFailed, &domain.LoadFailedPayload{Message: s.round.LoadError})
		return
	}

	s.round.LoadError = ""
	s.round.Queue = domain.NewQuestionQueue(qs)
	s.logger.Info("questions loaded", "theme", theme, "count", len(qs))
	s.queueEvent(domain.EventQuestionsLoaded, &domain.QuestionsLoadedPayload{Theme: theme, Count: len(qs)})
}

// RetryLoad restarts a failed question load
func (s *GameSession) RetryLoad() error {
	s.mu.Lock()
	defer s.unlock()

	r := s.round
	if r.Screen != domain.ScreenLobby || r.Loading || r.LoadError == "" {
		return fmt.Errorf("%w: nothing to retry", domain.ErrInvalidTransition)
	}
	s.touch()

	r.Loading = true
	r.LoadError = ""
	number, ctx := r.Number, s.roundCtx
	s.later(func() { s.loadRound(ctx, number) })
	return nil
}

// StartGame leaves the lobby once matchmaking is over and questions are in
func (s *GameSession) StartGame() error {
	s.mu.Lock()
	defer s.unlock()

	if s.round.Screen != domain.ScreenLobby {
		return fmt.Errorf("%w: start game from %s", domain.ErrInvalidTransition, s.round.Screen)
	}
	if !s.round.Ready() {
		return domain.ErrNotReady
	}
	s.touch()

	// Late arrivals and the matchmaking timeout are moot now
	s.roundTimers.stopAll()

	if err := s.transition(domain.ScreenGame); err != nil {
		return err
	}
	s.round.TimeLeft = s.settings.RoundSeconds
	s.cue(domain.CueStart)
	s.logger.Info("round started", "round", s.round.Number, "players", s.round.Registry.Len())

	s.scheduleTick(s.round.Number)
	s.issueQuestion()
	return nil
}
