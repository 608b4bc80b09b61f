package domain

import "time"

// EventType represents the type of session event
type EventType string

const (
	EventScreenChanged      EventType = "SCREEN_CHANGED"
	EventPlayerJoined       EventType = "PLAYER_JOINED"
	EventMatchmakingDone    EventType = "MATCHMAKING_DONE"
	EventQuestionsLoaded    EventType = "QUESTIONS_LOADED"
	EventLoadFailed         EventType = "LOAD_FAILED"
	EventQuestionIssued     EventType = "QUESTION_ISSUED"
	EventTick               EventType = "TICK"
	EventAnswered           EventType = "ANSWERED"
	EventPowerUpUsed        EventType = "POWER_UP_USED"
	EventRoundEnded         EventType = "ROUND_ENDED"
	EventSuddenDeathStarted EventType = "SUDDEN_DEATH_STARTED"
	EventTieBreakResolved   EventType = "TIE_BREAK_RESOLVED"
	EventCue                EventType = "CUE"
	EventAudioChanged       EventType = "AUDIO_CHANGED"
	EventIdentityChanged    EventType = "IDENTITY_CHANGED"
)

// GameEvent represents something that happened in a session
type GameEvent struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"sessionId"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new session event
func NewEvent(eventType EventType, sessionID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for different events

// ScreenPayload is sent on every screen transition
type ScreenPayload struct {
	From Screen `json:"from"`
	To   Screen `json:"to"`
}

// PlayerJoinedPayload is sent when a bot arrives in the lobby
type PlayerJoinedPayload struct {
	Player  Player   `json:"player"`
	Players []Player `json:"players"`
}

// QuestionsLoadedPayload is sent when the lobby has questions to play
type QuestionsLoadedPayload struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// LoadFailedPayload is sent when the question supply failed
type LoadFailedPayload struct {
	Message string `json:"message"`
}

// QuestionPayload is sent when a question is put in front of the players
type QuestionPayload struct {
	Generation uint64         `json:"generation"`
	Question   TriviaQuestion `json:"question"`
	Remaining  int            `json:"remaining"`
}

// TickPayload is sent every second of a running round
type TickPayload struct {
	TimeLeft int `json:"timeLeft"`
}

// AnsweredPayload is sent when any player answers
type AnsweredPayload struct {
	PlayerID string      `json:"playerId"`
	Answer   string      `json:"answer,omitempty"`
	Correct  bool        `json:"correct"`
	Points   int         `json:"points"`
	Stats    PlayerStats `json:"stats"`
}

// PowerUpPayload is sent when the human spends a power-up
type PowerUpPayload struct {
	Effect PowerUpEffect `json:"effect"`
	Stats  PlayerStats   `json:"stats"`
}

// RoundEndedPayload is sent when the round timer resolves
type RoundEndedPayload struct {
	Leaders []Player               `json:"leaders"`
	Stats   map[string]PlayerStats `json:"stats"`
}

// SuddenDeathPayload is sent when the tie-break question is ready
type SuddenDeathPayload struct {
	Pool     []Player       `json:"pool"`
	Question TriviaQuestion `json:"question"`
}

// OutcomePayload is sent when a winner is known
type OutcomePayload struct {
	Outcome Outcome                `json:"outcome"`
	Stats   map[string]PlayerStats `json:"stats"`
}

// CuePayload carries an audio cue together with the session's audio settings
type CuePayload struct {
	Cue   Cue           `json:"cue"`
	Audio AudioSettings `json:"audio"`
}
