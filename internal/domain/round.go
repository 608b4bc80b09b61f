package domain

// QuestionTurn is one issuance of a question to the players
type QuestionTurn struct {
	Generation uint64         `json:"generation"`
	Question   TriviaQuestion `json:"question"`
	Answered   bool           `json:"answered"`
	Selected   string         `json:"selected,omitempty"`
	Disabled   []string       `json:"disabled,omitempty"` // options removed by a hint
}

// IsDisabled reports whether option was removed by a hint
func (t *QuestionTurn) IsDisabled(option string) bool {
	for _, d := range t.Disabled {
		if d == option {
			return true
		}
	}
	return false
}

// SuddenDeath is the tie-break among tied leaders
type SuddenDeath struct {
	Pool          []Player        `json:"pool"`
	Question      *TriviaQuestion `json:"question,omitempty"`
	HumanAnswered bool            `json:"humanAnswered"`
	PendingBots   int             `json:"pendingBots"`
}

// InPool reports whether the player is one of the tied leaders
func (sd *SuddenDeath) InPool(playerID string) bool {
	for _, p := range sd.Pool {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// FirstNonHuman returns the first pool member that is not the human player
func (sd *SuddenDeath) FirstNonHuman() (Player, bool) {
	for _, p := range sd.Pool {
		if p.ID != HumanPlayerID {
			return p, true
		}
	}
	return Player{}, false
}

// Outcome is the result of a round
type Outcome struct {
	WinnerID    string `json:"winnerId,omitempty"`
	WinnerName  string `json:"winnerName,omitempty"`
	Shared      bool   `json:"shared"`
	ViaTieBreak bool   `json:"viaTieBreak"`
}

// HumanWon reports whether the human player won outright
func (o *Outcome) HumanWon() bool {
	return o != nil && !o.Shared && o.WinnerID == HumanPlayerID
}

// RoundState is everything a round carries from LOBBY to SCORE
type RoundState struct {
	Number          uint64
	Screen          Screen
	TimeLeft        int
	Theme           string
	Registry        *Registry
	Queue           *QuestionQueue
	Turn            *QuestionTurn
	Generation      uint64
	MatchmakingDone bool
	Loading         bool
	LoadError       string
	SuddenDeath     *SuddenDeath
	Resolved        bool
	Outcome         *Outcome
}

// NewRoundState creates a fresh round with only the human in the roster
func NewRoundState(number uint64, human Player, seconds int) *RoundState {
	reg := NewRegistry()
	_ = reg.AddPlayer(human)

	return &RoundState{
		Number:   number,
		Screen:   ScreenLobby,
		TimeLeft: seconds,
		Registry: reg,
		Queue:    NewQuestionQueue(nil),
	}
}

// Ready reports whether the lobby may start the game
func (r *RoundState) Ready() bool {
	_, loaded := r.Queue.Current()
	return r.MatchmakingDone && loaded
}

// IssueCurrent opens a new turn for the queue's current question
func (r *RoundState) IssueCurrent() (*QuestionTurn, bool) {
	q, ok := r.Queue.Current()
	if !ok {
		return nil, false
	}

	r.Generation++
	r.Turn = &QuestionTurn{
		Generation: r.Generation,
		Question:   q,
	}
	return r.Turn, true
}

// ClearTurn drops the current turn so no callback can still target it
func (r *RoundState) ClearTurn() {
	r.Generation++
	r.Turn = nil
}

// Tick moves the clock one second and returns the time left
func (r *RoundState) Tick() int {
	if r.TimeLeft > 0 {
		r.TimeLeft--
	}
	return r.TimeLeft
}

// Resolve marks the round as resolved. It returns false if it already was.
func (r *RoundState) Resolve() bool {
	if r.Resolved {
		return false
	}
	r.Resolved = true
	return true
}
