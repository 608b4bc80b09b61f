package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"trivia/internal/app"
	"trivia/internal/config"
	"trivia/internal/domain"
	"trivia/internal/questions"
	"trivia/internal/storage"
	"trivia/internal/transport/ws"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.GameHub, *storage.Memory) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rng := rand.New(rand.NewSource(7))
	bank := questions.NewBank(rng)
	store := storage.NewMemory()

	deps := app.Dependencies{
		Questions: questions.NewPipeline(bank, 3, rand.New(rand.NewSource(8)), logger),
		Themes:    questions.NewFallbackThemes(bank, questions.DefaultTheme, logger),
		Store:     store,
		Cues:      app.LogCueSink{Logger: logger},
	}
	hub := app.NewGameHub(app.DefaultSettings(), deps, time.Hour, logger)

	srv := NewServer(config.Load(), hub, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		hub.Close()
	})
	return ts, hub, store
}

func decodeResponse(t *testing.T, res *http.Response, data interface{}) Response {
	t.Helper()
	defer res.Body.Close()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *ErrorInfo      `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return Response{Success: raw.Success, Error: raw.Error}
}

func createSession(t *testing.T, ts *httptest.Server, profile string) CreateSessionResponse {
	t.Helper()

	body, _ := json.Marshal(CreateSessionRequest{Profile: profile})
	res, err := http.Post(ts.URL+"/api/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var created CreateSessionResponse
	if resp := decodeResponse(t, res, &created); !resp.Success {
		t.Fatalf("create session failed: %+v", resp.Error)
	}
	return created
}

func TestSessionEndpoints(t *testing.T) {
	ts, hub, _ := newTestServer(t)

	created := createSession(t, ts, "profile-x")
	if created.SessionID == "" || created.Profile != "profile-x" {
		t.Fatalf("unexpected session: %+v", created)
	}
	if !strings.HasPrefix(created.WebSocketURL, "ws://") || !strings.Contains(created.WebSocketURL, created.SessionID) {
		t.Fatalf("unexpected websocket url %q", created.WebSocketURL)
	}

	res, err := http.Get(ts.URL + "/api/sessions/" + created.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	var snap app.Snapshot
	if resp := decodeResponse(t, res, &snap); !resp.Success || snap.Screen != domain.ScreenHome {
		t.Fatalf("expected a HOME snapshot, got %+v %+v", resp, snap)
	}

	res, err = http.Get(ts.URL + "/api/sessions/nope")
	if err != nil {
		t.Fatalf("get missing session: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	if resp := decodeResponse(t, res, nil); resp.Error == nil || resp.Error.Code != "SESSION_NOT_FOUND" {
		t.Fatalf("expected SESSION_NOT_FOUND, got %+v", resp.Error)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+created.SessionID, nil)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete session: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK || hub.GetSessionCount() != 0 {
		t.Fatalf("expected the session to be deleted, status %d count %d", res.StatusCode, hub.GetSessionCount())
	}
}

func TestCreateSessionWithoutBody(t *testing.T) {
	ts, _, _ := newTestServer(t)

	res, err := http.Post(ts.URL+"/api/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	var created CreateSessionResponse
	if resp := decodeResponse(t, res, &created); !resp.Success || created.Profile == "" {
		t.Fatalf("expected a generated profile, got %+v", created)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	ts, _, store := newTestServer(t)
	ctx := context.Background()

	for _, score := range []int{4, 12, 8} {
		if err := store.SaveScore(ctx, domain.ScoreEntry{Username: "p", Score: score, Theme: "Space"}); err != nil {
			t.Fatalf("save score: %v", err)
		}
	}

	res, err := http.Get(ts.URL + "/api/leaderboard?limit=2")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	var entries []domain.ScoreEntry
	if resp := decodeResponse(t, res, &entries); !resp.Success {
		t.Fatalf("leaderboard failed: %+v", resp.Error)
	}
	if len(entries) != 2 || entries[0].Score != 12 || entries[1].Score != 8 {
		t.Fatalf("unexpected leaderboard: %+v", entries)
	}

	res, err = http.Get(ts.URL + "/api/leaderboard?limit=abc")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad limit, got %d", res.StatusCode)
	}
}

func TestHealthAndStats(t *testing.T) {
	ts, _, _ := newTestServer(t)
	createSession(t, ts, "")

	res, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	var health HealthResponse
	if resp := decodeResponse(t, res, &health); !resp.Success || health.Status != "ok" {
		t.Fatalf("unexpected health: %+v", health)
	}

	res, err = http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats StatsResponse
	decodeResponse(t, res, &stats)
	if stats.ActiveSessions != 1 || stats.ActiveRounds != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readUntil reads frames until one of type want arrives
func readUntil(t *testing.T, conn *websocket.Conn, want string) wireMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg wireMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg
		}
	}
}

func TestWebSocketCommands(t *testing.T) {
	ts, _, _ := newTestServer(t)
	created := createSession(t, ts, "")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?sessionId=" + created.SessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	connected := readUntil(t, conn, "connected")
	var hello struct {
		SessionID string       `json:"sessionId"`
		State     app.Snapshot `json:"state"`
	}
	if err := json.Unmarshal(connected.Payload, &hello); err != nil {
		t.Fatalf("decode connected: %v", err)
	}
	if hello.SessionID != created.SessionID || hello.State.Screen != domain.ScreenHome {
		t.Fatalf("unexpected hello: %+v", hello)
	}

	send := func(v interface{}) {
		t.Helper()
		if err := conn.WriteJSON(v); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	send(map[string]string{"type": "start_game"})
	var errPayload struct {
		Code string `json:"code"`
	}
	json.Unmarshal(readUntil(t, conn, "error").Payload, &errPayload)
	if errPayload.Code != "INVALID_ACTION" {
		t.Fatalf("expected INVALID_ACTION from HOME, got %q", errPayload.Code)
	}

	send(map[string]interface{}{"type": "create_game", "payload": map[string]bool{"guest": true}})
	var screen domain.ScreenPayload
	json.Unmarshal(readUntil(t, conn, string(domain.EventScreenChanged)).Payload, &screen)
	if screen.To != domain.ScreenLobby {
		t.Fatalf("expected LOBBY, got %+v", screen)
	}

	send(map[string]interface{}{"type": "use_power_up", "payload": map[string]string{"kind": "skip"}})
	var result ws.PowerUpResultPayload
	json.Unmarshal(readUntil(t, conn, "power_up_result").Payload, &result)
	if result.Applied {
		t.Fatalf("power-ups do nothing in the lobby")
	}

	send(map[string]string{"type": "bogus"})
	json.Unmarshal(readUntil(t, conn, "error").Payload, &errPayload)
	if errPayload.Code != "INVALID_MESSAGE" {
		t.Fatalf("expected INVALID_MESSAGE, got %q", errPayload.Code)
	}

	send(map[string]string{"type": "ping"})
	readUntil(t, conn, "pong")
}

func TestWebSocketUnknownSession(t *testing.T) {
	ts, _, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?sessionId=missing"
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected the dial to fail")
	}
	if res == nil || res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown session")
	}
}
