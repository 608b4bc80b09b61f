package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"sync"
	"time"

	"trivia/internal/domain"
)

// persistTimeout bounds every best-effort store call
const persistTimeout = 5 * time.Second

// Dependencies are the collaborators a session talks to
type Dependencies struct {
	Questions QuestionLoader
	Themes    ThemeProvider
	Store     Store
	Cues      CueSink
	Scheduler Scheduler

	// Async runs background work. Defaults to a new goroutine per call.
	Async func(func())
	// NewRand seeds the rng of each new session. Defaults to the clock.
	NewRand func() *rand.Rand
}

// GameSession is the orchestration core of one player's games. Every
// mutation, whether a command, a timer callback or a load completion,
// happens under mu.
type GameSession struct {
	id        string
	profile   string
	createdAt time.Time
	settings  Settings
	logger    *slog.Logger

	questions QuestionLoader
	themes    ThemeProvider
	store     Store
	cues      CueSink
	scheduler Scheduler
	async     func(func())

	mu              sync.Mutex
	rng             *rand.Rand
	powerUps        *domain.PowerUpEngine
	bots            *BotSimulator
	round           *domain.RoundState
	roundCtx        context.Context
	roundCancel     context.CancelFunc
	roundTimers     timerGroup // lobby, tick and tie-break timers
	questionTimers  timerGroup // bot answers and post-answer advance
	botNames        []string
	botColors       []string
	identity        *domain.Identity
	identityTouched bool
	gamesPlayed     int
	audio           domain.AudioSettings
	audioReady      bool
	lastActive      time.Time
	closed          bool
	pending         []func()

	writesMu sync.Mutex
	writes   []func() // store writes, applied in order
	writing  bool

	clients   map[string]ClientConnection // clientID -> client
	clientsMu sync.RWMutex

	events chan *domain.GameEvent
	done   chan struct{}
}

// NewGameSession creates a session on the HOME screen and starts restoring
// the profile's identity in the background.
func NewGameSession(id, profile string, settings Settings, deps Dependencies, logger *slog.Logger) *GameSession {
	if deps.Scheduler == nil {
		deps.Scheduler = RealScheduler
	}
	if deps.Async == nil {
		deps.Async = func(f func()) { go f() }
	}
	if deps.NewRand == nil {
		deps.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}

	rng := deps.NewRand()
	now := time.Now()
	idle := domain.NewRoundState(0, domain.NewHumanPlayer(""), settings.RoundSeconds)
	idle.Screen = domain.ScreenHome

	s := &GameSession{
		id:         id,
		profile:    profile,
		createdAt:  now,
		settings:   settings,
		logger:     logger.With("session", id),
		questions:  deps.Questions,
		themes:     deps.Themes,
		store:      deps.Store,
		cues:       deps.Cues,
		scheduler:  deps.Scheduler,
		async:      deps.Async,
		rng:        rng,
		powerUps:   domain.NewPowerUpEngine(rng),
		bots:       NewBotSimulator(rng),
		round:      idle,
		audio:      domain.AudioSettings{Muted: true, Volume: domain.DefaultVolume},
		lastActive: now,
		clients:    make(map[string]ClientConnection),
		events:     make(chan *domain.GameEvent, 100),
		done:       make(chan struct{}),
	}

	go s.eventLoop()
	s.async(s.restore)

	return s
}

// ID returns the session ID
func (s *GameSession) ID() string {
	return s.id
}

// Profile returns the key the session persists under
func (s *GameSession) Profile() string {
	return s.profile
}

// GetCreatedAt returns when the session was created
func (s *GameSession) GetCreatedAt() time.Time {
	return s.createdAt
}

// LastActive returns when the session last received a command
func (s *GameSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Screen returns the current screen
func (s *GameSession) Screen() domain.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Screen
}

// RegisterClient registers a client connection
func (s *GameSession) RegisterClient(clientID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[clientID] = client
}

// UnregisterClient removes a client connection
func (s *GameSession) UnregisterClient(clientID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, clientID)
}

// ClientCount returns the number of attached clients
func (s *GameSession) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// restore loads the persisted identity and play counter
func (s *GameSession) restore() {
	if s.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	id, err := s.store.SessionIdentity(ctx, s.profile)
	if err != nil {
		s.logger.Warn("failed to restore identity", "error", err)
	}
	played, playedErr := s.store.GamesPlayed(ctx, s.profile)
	if playedErr != nil {
		s.logger.Warn("failed to restore games played", "error", playedErr)
	}

	s.mu.Lock()
	defer s.unlock()

	if id != nil && !s.identityTouched {
		s.identity = id
		s.queueEvent(domain.EventIdentityChanged, id)
	}
	if playedErr == nil && played > s.gamesPlayed {
		s.gamesPlayed = played
	}
}

// unlock releases mu and hands work queued under the lock to async
func (s *GameSession) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.flushWrites()
	for _, f := range pending {
		s.async(f)
	}
}

// later queues f to run once the lock is released (caller must hold lock)
func (s *GameSession) later(f func()) {
	s.pending = append(s.pending, f)
}

// persist queues a best-effort store write (caller must hold lock).
// Writes of a session reach the store in the order they were queued.
func (s *GameSession) persist(op string, f func(ctx context.Context) error) {
	if s.store == nil {
		return
	}

	s.writesMu.Lock()
	s.writes = append(s.writes, func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := f(ctx); err != nil {
			s.logger.Warn("persistence failed", "op", op, "error", err)
		}
	})
	s.writesMu.Unlock()
}

// flushWrites starts a writer unless one is already draining the queue
func (s *GameSession) flushWrites() {
	s.writesMu.Lock()
	if s.writing || len(s.writes) == 0 {
		s.writesMu.Unlock()
		return
	}
	s.writing = true
	s.writesMu.Unlock()

	s.async(s.drainWrites)
}

// drainWrites applies queued writes one at a time until the queue is empty
func (s *GameSession) drainWrites() {
	for {
		s.writesMu.Lock()
		if len(s.writes) == 0 {
			s.writing = false
			s.writesMu.Unlock()
			return
		}
		f := s.writes[0]
		s.writes = s.writes[1:]
		s.writesMu.Unlock()

		f()
	}
}

func (s *GameSession) touch() {
	s.lastActive = time.Now()
}

// current reports whether a callback for round number is still live
func (s *GameSession) current(number uint64) bool {
	return !s.closed && s.round.Number == number
}

// transition moves to screen to (caller must hold lock)
func (s *GameSession) transition(to domain.Screen) error {
	from := s.round.Screen
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}

	s.round.Screen = to
	s.queueEvent(domain.EventScreenChanged, &domain.ScreenPayload{From: from, To: to})
	return nil
}

// cancelRound stops every timer and in-flight load of the round
func (s *GameSession) cancelRound() {
	s.roundTimers.stopAll()
	s.questionTimers.stopAll()
	if s.roundCancel != nil {
		s.roundCancel()
		s.roundCancel = nil
	}
}

// queueEvent adds an event to the broadcast queue
func (s *GameSession) queueEvent(eventType domain.EventType, payload interface{}) {
	event := domain.NewEvent(eventType, s.id, payload)
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop delivers cues and broadcasts events to clients
func (s *GameSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			if cue, ok := event.Payload.(*domain.CuePayload); ok {
				s.notifyCue(cue)
			}
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to every attached client
func (s *GameSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for clientID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "client", clientID, "error", err)
		}
	}
}

// Snapshot is a copy of the session state for presentation
type Snapshot struct {
	SessionID       string                        `json:"sessionId"`
	Screen          domain.Screen                 `json:"screen"`
	Round           uint64                        `json:"round"`
	TimeLeft        int                           `json:"timeLeft"`
	Theme           string                        `json:"theme,omitempty"`
	Players         []domain.Player               `json:"players"`
	Stats           map[string]domain.PlayerStats `json:"stats"`
	Turn            *domain.QuestionTurn          `json:"turn,omitempty"`
	Remaining       int                           `json:"remaining"`
	MatchmakingDone bool                          `json:"matchmakingDone"`
	Ready           bool                          `json:"ready"`
	Loading         bool                          `json:"loading"`
	LoadError       string                        `json:"loadError,omitempty"`
	SuddenDeath     *domain.SuddenDeath           `json:"suddenDeath,omitempty"`
	Outcome         *domain.Outcome               `json:"outcome,omitempty"`
	Identity        *domain.Identity              `json:"identity,omitempty"`
	GamesPlayed     int                           `json:"gamesPlayed"`
	Audio           domain.AudioSettings          `json:"audio"`
}

// Snapshot returns a copy of the current state
func (s *GameSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.round
	snap := Snapshot{
		SessionID:       s.id,
		Screen:          r.Screen,
		Round:           r.Number,
		TimeLeft:        r.TimeLeft,
		Theme:           r.Theme,
		Players:         r.Registry.Players(),
		Stats:           r.Registry.AllStats(),
		Remaining:       r.Queue.Remaining(),
		MatchmakingDone: r.MatchmakingDone,
		Ready:           r.Screen == domain.ScreenLobby && r.Ready(),
		Loading:         r.Loading,
		LoadError:       r.LoadError,
		GamesPlayed:     s.gamesPlayed,
		Audio:           s.audio,
	}

	if r.Turn != nil {
		turn := *r.Turn
		turn.Question.Options = slices.Clone(turn.Question.Options)
		turn.Disabled = slices.Clone(turn.Disabled)
		snap.Turn = &turn
	}
	if r.SuddenDeath != nil {
		sd := *r.SuddenDeath
		sd.Pool = slices.Clone(sd.Pool)
		if sd.Question != nil {
			q := *sd.Question
			q.Options = slices.Clone(q.Options)
			sd.Question = &q
		}
		snap.SuddenDeath = &sd
	}
	if r.Outcome != nil {
		o := *r.Outcome
		snap.Outcome = &o
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}

	return snap
}

// Close shuts down the session
func (s *GameSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelRound()
	s.pending = nil
	s.mu.Unlock()

	close(s.done)

	// Close all client connections
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
