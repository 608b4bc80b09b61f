package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"trivia/internal/domain"
	"trivia/internal/storage"
)

// fakeScheduler is a manual clock. Callbacks only run inside Advance or
// FireStopped, never inside AfterFunc.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *fakeScheduler
	due     time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	live := !t.stopped && !t.fired
	t.stopped = true
	return live
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{s: s, due: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock by d, firing due timers in order
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.due
		next.fired = true
		s.mu.Unlock()
		next.f()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

func (s *fakeScheduler) nextDue(target time.Duration) *fakeTimer {
	var next *fakeTimer
	for _, t := range s.timers {
		if t.stopped || t.fired || t.due > target {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// FireStopped runs every cancelled callback anyway, the way a timer that
// raced its Stop call would
func (s *fakeScheduler) FireStopped() int {
	s.mu.Lock()
	var stale []*fakeTimer
	for _, t := range s.timers {
		if t.stopped && !t.fired {
			t.fired = true
			stale = append(stale, t)
		}
	}
	s.mu.Unlock()

	sort.Slice(stale, func(i, j int) bool { return stale[i].seq < stale[j].seq })
	for _, t := range stale {
		t.f()
	}
	return len(stale)
}

// Live counts timers that may still fire
func (s *fakeScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type stubLoader struct {
	mu        sync.Mutex
	batch     []domain.TriviaQuestion
	batchErr  error
	single    domain.TriviaQuestion
	singleErr error
	themes    []string
	exclude   []string
}

func (l *stubLoader) LoadBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.themes = append(l.themes, theme)
	if l.batchErr != nil {
		return nil, l.batchErr
	}
	n := min(count, len(l.batch))
	return slices.Clone(l.batch[:n]), nil
}

func (l *stubLoader) LoadSingle(ctx context.Context, theme string, exclude []string, difficulty domain.Difficulty) (domain.TriviaQuestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exclude = slices.Clone(exclude)
	if l.singleErr != nil {
		return domain.TriviaQuestion{}, l.singleErr
	}
	return l.single, nil
}

func (l *stubLoader) setBatchErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batchErr = err
}

type stubThemes string

func (t stubThemes) Theme(ctx context.Context) string {
	return string(t)
}

type recordingCues struct {
	cues chan domain.Cue
}

func newRecordingCues() *recordingCues {
	return &recordingCues{cues: make(chan domain.Cue, 256)}
}

func (r *recordingCues) Notify(cue domain.Cue, audio domain.AudioSettings) {
	select {
	case r.cues <- cue:
	default:
	}
}

// waitFor blocks until want arrives or the timeout passes
func (r *recordingCues) waitFor(t *testing.T, want domain.Cue) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-r.cues:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("cue %q never delivered", want)
		}
	}
}

type recordingClient struct {
	id     string
	events chan *domain.GameEvent
}

func newRecordingClient(id string) *recordingClient {
	return &recordingClient{id: id, events: make(chan *domain.GameEvent, 256)}
}

func (c *recordingClient) Send(message interface{}) error {
	if ev, ok := message.(*domain.GameEvent); ok {
		select {
		case c.events <- ev:
		default:
		}
	}
	return nil
}

func (c *recordingClient) GetClientID() string { return c.id }
func (c *recordingClient) Close() error        { return nil }

func (c *recordingClient) waitFor(t *testing.T, want domain.EventType) *domain.GameEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.events:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("event %s never delivered", want)
			return nil
		}
	}
}

func makeQuestions(theme string, n int) []domain.TriviaQuestion {
	qs := make([]domain.TriviaQuestion, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, domain.TriviaQuestion{
			Category:      theme,
			Text:          fmt.Sprintf("%s question %d?", theme, i),
			Options:       []string{fmt.Sprintf("right %d", i), fmt.Sprintf("wrong %d a", i), fmt.Sprintf("wrong %d b", i), fmt.Sprintf("wrong %d c", i)},
			CorrectAnswer: fmt.Sprintf("right %d", i),
			Kind:          domain.KindText,
			Difficulty:    domain.DifficultyNormal,
		})
	}
	return qs
}

func hardQuestion() domain.TriviaQuestion {
	return domain.TriviaQuestion{
		Category:      "Tie-break",
		Text:          "Which moon of Saturn has a thick nitrogen atmosphere?",
		Options:       []string{"Titan", "Enceladus", "Mimas", "Rhea"},
		CorrectAnswer: "Titan",
		Kind:          domain.KindText,
		Difficulty:    domain.DifficultyHard,
	}
}

func testSettings() Settings {
	s := DefaultSettings()
	s.PostAnswerDelay = 0
	return s
}

type testEnv struct {
	session *GameSession
	sched   *fakeScheduler
	loader  *stubLoader
	store   *storage.Memory
	cues    *recordingCues
}

func newTestEnv(t *testing.T, settings Settings, loader *stubLoader) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, settings, loader, storage.NewMemory(), "profile-1")
}

func newTestEnvWithStore(t *testing.T, settings Settings, loader *stubLoader, store *storage.Memory, profile string) *testEnv {
	t.Helper()

	env := &testEnv{
		sched:  &fakeScheduler{},
		loader: loader,
		store:  store,
		cues:   newRecordingCues(),
	}
	deps := Dependencies{
		Questions: loader,
		Themes:    stubThemes("Cosmic Exploration"),
		Store:     store,
		Cues:      env.cues,
		Scheduler: env.sched,
		Async:     func(f func()) { f() },
		NewRand:   func() *rand.Rand { return rand.New(rand.NewSource(1)) },
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.session = NewGameSession("session-1", profile, settings, deps, logger)
	t.Cleanup(env.session.Close)
	return env
}

// enterGame creates a game, waits out matchmaking and starts the round
func (e *testEnv) enterGame(t *testing.T) {
	t.Helper()
	if err := e.session.CreateGame(true); err != nil {
		t.Fatalf("create game: %v", err)
	}
	e.sched.Advance(e.session.settings.MatchmakingTimeout)
	if err := e.session.StartGame(); err != nil {
		t.Fatalf("start game: %v", err)
	}
}

func humanStats(t *testing.T, snap Snapshot) domain.PlayerStats {
	t.Helper()
	st, ok := snap.Stats[domain.HumanPlayerID]
	if !ok {
		t.Fatalf("no stats for the human player")
	}
	return st
}
