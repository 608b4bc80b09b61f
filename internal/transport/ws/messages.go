package ws

import (
	"encoding/json"
	"time"

	"trivia/internal/app"
	"trivia/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgCreateGame  MessageType = "create_game"
	MsgStartGame   MessageType = "start_game"
	MsgAnswer      MessageType = "answer"
	MsgUsePowerUp  MessageType = "use_power_up"
	MsgPlayAgain   MessageType = "play_again"
	MsgGoHome      MessageType = "go_home"
	MsgRetryLoad   MessageType = "retry_load"
	MsgNavigate    MessageType = "navigate"
	MsgSignup      MessageType = "signup"
	MsgLogin       MessageType = "login"
	MsgLogout      MessageType = "logout"
	MsgToggleMute  MessageType = "toggle_mute"
	MsgSetVolume   MessageType = "set_volume"
	MsgGetSnapshot MessageType = "get_snapshot"
	MsgPing        MessageType = "ping"
)

// Server → Client message types. Session events are sent as they are.
const (
	MsgConnected MessageType = "connected"
	MsgSnapshot  MessageType = "snapshot"
	MsgPowerUp   MessageType = "power_up_result"
	MsgError     MessageType = "error"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// CreateGamePayload is the payload for create_game
type CreateGamePayload struct {
	Guest bool `json:"guest"`
}

// AnswerPayload is the payload for answer
type AnswerPayload struct {
	Option string `json:"option"`
}

// UsePowerUpPayload is the payload for use_power_up
type UsePowerUpPayload struct {
	Kind domain.PowerUpKind `json:"kind"`
}

// NavigatePayload is the payload for navigate
type NavigatePayload struct {
	Screen domain.Screen `json:"screen"`
}

// LoginPayload is the payload for login
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetVolumePayload is the payload for set_volume
type SetVolumePayload struct {
	Volume float64 `json:"volume"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	ClientID  string       `json:"clientId"`
	SessionID string       `json:"sessionId"`
	Profile   string       `json:"profile"`
	State     app.Snapshot `json:"state"`
}

// PowerUpResultPayload tells the client whether its power-up applied
type PowerUpResultPayload struct {
	Applied bool                 `json:"applied"`
	Effect  domain.PowerUpEffect `json:"effect"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage     = "INVALID_MESSAGE"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeInvalidAction      = "INVALID_ACTION"
	ErrCodeNotReady           = "NOT_READY"
	ErrCodeInvalidAnswer      = "INVALID_ANSWER"
	ErrCodeAlreadyAnswered    = "ALREADY_ANSWERED"
	ErrCodeNotInTieBreak      = "NOT_IN_TIE_BREAK"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountExists      = "ACCOUNT_EXISTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)
