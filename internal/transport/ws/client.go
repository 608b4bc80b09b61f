package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"trivia/internal/app"
	"trivia/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256

	// Time allowed for a signup or login round trip to the store
	authTimeout = 10 * time.Second
)

// Client represents a WebSocket client connection
type Client struct {
	conn     *websocket.Conn
	session  *app.GameSession
	clientID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.GameSession, clientID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		clientID: clientID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// GetClientID returns the ID of this connection
func (c *Client) GetClientID() string {
	return c.clientID
}

// Send implements app.ClientConnection interface
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "client", c.clientID)
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.UnregisterClient(c.clientID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgCreateGame:
		var p CreateGamePayload
		if c.decode(msg.Payload, &p) {
			c.reply(c.session.CreateGame(p.Guest))
		}
	case MsgStartGame:
		c.reply(c.session.StartGame())
	case MsgAnswer:
		var p AnswerPayload
		if c.decode(msg.Payload, &p) {
			c.reply(c.session.Answer(p.Option))
		}
	case MsgUsePowerUp:
		var p UsePowerUpPayload
		if c.decode(msg.Payload, &p) {
			effect, applied := c.session.UsePowerUp(p.Kind)
			c.Send(NewServerMessage(MsgPowerUp, &PowerUpResultPayload{Applied: applied, Effect: effect}))
		}
	case MsgPlayAgain:
		c.reply(c.session.PlayAgain())
	case MsgGoHome:
		c.reply(c.session.GoHome())
	case MsgRetryLoad:
		c.reply(c.session.RetryLoad())
	case MsgNavigate:
		var p NavigatePayload
		if c.decode(msg.Payload, &p) {
			c.reply(c.session.Navigate(p.Screen))
		}
	case MsgSignup:
		var p domain.Credentials
		if c.decode(msg.Payload, &p) {
			ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
			_, err := c.session.Signup(ctx, p)
			cancel()
			c.reply(err)
		}
	case MsgLogin:
		var p LoginPayload
		if c.decode(msg.Payload, &p) {
			ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
			_, err := c.session.Login(ctx, p.Email, p.Password)
			cancel()
			c.reply(err)
		}
	case MsgLogout:
		c.reply(c.session.Logout())
	case MsgToggleMute:
		c.session.ToggleMute()
	case MsgSetVolume:
		var p SetVolumePayload
		if c.decode(msg.Payload, &p) {
			c.session.SetVolume(p.Volume)
		}
	case MsgGetSnapshot:
		c.Send(NewServerMessage(MsgSnapshot, c.session.Snapshot()))
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// decode unmarshals an optional payload, reporting bad JSON to the client
func (c *Client) decode(raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return false
	}
	return true
}

// reply reports a command error. Success is visible through session events.
func (c *Client) reply(err error) {
	if err == nil {
		return
	}
	code := errorCode(err)
	if code == ErrCodeInternalError {
		c.logger.Error("command failed", "client", c.clientID, "error", err)
	}
	c.sendError(code, err.Error())
}

// errorCode maps a session error to its wire code
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return ErrCodeSessionNotFound
	case errors.Is(err, domain.ErrNotReady):
		return ErrCodeNotReady
	case errors.Is(err, domain.ErrInvalidAnswer):
		return ErrCodeInvalidAnswer
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return ErrCodeAlreadyAnswered
	case errors.Is(err, domain.ErrPlayerNotFound):
		return ErrCodeNotInTieBreak
	case errors.Is(err, domain.ErrInvalidCredentials):
		return ErrCodeInvalidCredentials
	case errors.Is(err, domain.ErrAccountExists):
		return ErrCodeAccountExists
	case errors.Is(err, domain.ErrInvalidTransition):
		return ErrCodeInvalidAction
	default:
		return ErrCodeInternalError
	}
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	payload := &ConnectedPayload{
		ClientID:  c.clientID,
		SessionID: c.session.ID(),
		Profile:   c.session.Profile(),
		State:     c.session.Snapshot(),
	}

	c.Send(NewServerMessage(MsgConnected, payload))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	c.Send(NewServerMessage(MsgError, payload))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, nil))
}
