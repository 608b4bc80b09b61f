package questions

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"trivia/internal/domain"
)

type geminiStub struct {
	mu      sync.Mutex
	prompts []string
	answer  func(prompt string) string
	image   bool
}

func (s *geminiStub) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if strings.HasSuffix(r.URL.Path, ":predict") {
			s.mu.Lock()
			s.image = true
			s.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]any{
				"predictions": []map[string]string{{"bytesBase64Encoded": "AAAA", "mimeType": "image/png"}},
			})
			return
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		prompt := req.Contents[0].Parts[0].Text
		s.mu.Lock()
		s.prompts = append(s.prompts, prompt)
		s.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": s.answer(prompt)}}}},
			},
		})
	}
}

func (s *geminiStub) firstPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[0]
}

func (s *geminiStub) sawImage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

const stubQuestion = `{"category":"Space","question":"Largest planet?","options":["Jupiter","Mars","Venus","Earth"],"correctAnswer":"Jupiter"}`

func newStubSource(t *testing.T, stub *geminiStub, visual float64) *GeminiSource {
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)
	return NewGeminiSource(GeminiConfig{
		APIKey:       "test-key",
		Model:        "gemini-test",
		ImageModel:   "imagen-test",
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
		VisualChance: visual,
	}, rand.New(rand.NewSource(1)), testLogger())
}

func TestGeminiFetchTheme(t *testing.T) {
	stub := &geminiStub{answer: func(string) string { return "\"Space Mysteries\"" }}
	src := newStubSource(t, stub, 0)

	theme, err := src.FetchTheme(context.Background())
	if err != nil {
		t.Fatalf("fetch theme: %v", err)
	}
	if theme != "Space Mysteries" {
		t.Fatalf("unexpected theme %q", theme)
	}
}

func TestGeminiFetchThemeBatch(t *testing.T) {
	stub := &geminiStub{answer: func(string) string { return "```json\n[" + stubQuestion + "," + stubQuestion + "]\n```" }}
	src := newStubSource(t, stub, 0)

	got, err := src.FetchThemeBatch(context.Background(), "Cosmic Exploration", 2)
	if err != nil {
		t.Fatalf("fetch batch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	if !strings.Contains(stub.firstPrompt(), "Cosmic Exploration") {
		t.Fatalf("theme missing from prompt: %q", stub.firstPrompt())
	}
}

func TestGeminiFetchSingleHardNeverVisual(t *testing.T) {
	stub := &geminiStub{answer: func(string) string { return stubQuestion }}
	src := newStubSource(t, stub, 1)

	got, err := src.FetchSingle(context.Background(), "Space", []string{"Old question"}, domain.DifficultyHard)
	if err != nil {
		t.Fatalf("fetch single: %v", err)
	}
	if got.Kind != domain.KindText || got.Difficulty != domain.DifficultyHard {
		t.Fatalf("unexpected question: %+v", got)
	}
	if stub.sawImage() {
		t.Fatal("hard question must not request an image")
	}
	if !strings.Contains(stub.firstPrompt(), "VERY HARD") || !strings.Contains(stub.firstPrompt(), "Old question") {
		t.Fatalf("prompt missing difficulty or exclusions: %q", stub.firstPrompt())
	}
}

func TestGeminiFetchSingleVisual(t *testing.T) {
	stub := &geminiStub{answer: func(prompt string) string {
		if strings.Contains(prompt, "visual noun") {
			return "Saturn"
		}
		return stubQuestion
	}}
	src := newStubSource(t, stub, 1)

	got, err := src.FetchSingle(context.Background(), "Space", nil, domain.DifficultyNormal)
	if err != nil {
		t.Fatalf("fetch single: %v", err)
	}
	if got.Kind != domain.KindVisual || !strings.HasPrefix(got.ImageRef, "data:image/png;base64,") {
		t.Fatalf("expected visual question, got %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("visual question invalid: %v", err)
	}
}

func TestGeminiRequiresKey(t *testing.T) {
	src := NewGeminiSource(GeminiConfig{Model: "m"}, rand.New(rand.NewSource(1)), testLogger())
	if _, err := src.FetchTheme(context.Background()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestGeminiServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewGeminiSource(GeminiConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, rand.New(rand.NewSource(1)), testLogger())
	if _, err := src.FetchThemeBatch(context.Background(), "Space", 3); err == nil {
		t.Fatal("expected error on 429")
	}
}
