package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"trivia/internal/domain"
)

const jsonInstructions = `Respond ONLY with valid JSON using this shape:
{
  "category": "string",
  "question": "string",
  "options": ["string", "string", "string", "string"],
  "correctAnswer": "string"
}
The correctAnswer must be exactly one of the options.`

// GeminiConfig configures the Gemini HTTP client
type GeminiConfig struct {
	APIKey       string
	Model        string
	ImageModel   string
	BaseURL      string
	Timeout      time.Duration
	VisualChance float64
}

// GeminiSource generates questions and themes with the Gemini API.
// It implements both Source and ThemeGenerator.
type GeminiSource struct {
	cfg    GeminiConfig
	client *http.Client
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGeminiSource creates a Gemini-backed source
func NewGeminiSource(cfg GeminiConfig, rng *rand.Rand, logger *slog.Logger) *GeminiSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GeminiSource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		rng:    rng,
	}
}

// FetchTheme asks the model for a short trivia theme
func (g *GeminiSource) FetchTheme(ctx context.Context) (string, error) {
	text, err := g.generate(ctx, `Give one fun trivia theme such as "80s Cartoons", "Space Mysteries" or "Mythical Creatures". Only return the theme, no extra text.`)
	if err != nil {
		return "", err
	}
	theme := sanitizeTheme(text)
	if theme == "" {
		return "", errors.New("gemini returned an empty theme")
	}
	return theme, nil
}

// FetchThemeBatch generates count questions on theme
func (g *GeminiSource) FetchThemeBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error) {
	prompt := fmt.Sprintf("Generate %d distinct trivia questions on the theme %q. Return a JSON array where each item follows:\n%s", count, theme, jsonInstructions)
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseQuestionList(text)
}

// FetchSingle generates one question, sometimes a visual one for normal difficulty
func (g *GeminiSource) FetchSingle(ctx context.Context, theme string, exclude []string, difficulty domain.Difficulty) (domain.TriviaQuestion, error) {
	if difficulty != domain.DifficultyHard && g.rollVisual() {
		q, err := g.fetchVisual(ctx, theme, exclude)
		if err == nil {
			return q, nil
		}
		g.logger.Warn("visual question failed, falling back to text", "theme", theme, "error", err)
	}

	lead := "Generate a normal trivia question"
	if difficulty == domain.DifficultyHard {
		lead = "Generate a VERY HARD trivia question"
	}
	prompt := fmt.Sprintf("%s for the theme %q.%s\n%s", lead, theme, avoidClause(exclude), jsonInstructions)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return domain.TriviaQuestion{}, err
	}
	q, err := parseQuestion(text)
	if err != nil {
		return domain.TriviaQuestion{}, err
	}
	q.Difficulty = difficulty
	return q, nil
}

// fetchVisual picks a visual subject, renders it and builds a question around it
func (g *GeminiSource) fetchVisual(ctx context.Context, theme string, exclude []string) (domain.TriviaQuestion, error) {
	subject, err := g.generate(ctx, fmt.Sprintf("Suggest one highly visual noun for the theme %q. Respond only with the noun.", theme))
	if err != nil {
		return domain.TriviaQuestion{}, err
	}
	subject = sanitizeTheme(subject)

	image, err := g.generateImage(ctx, subject)
	if err != nil {
		return domain.TriviaQuestion{}, err
	}

	prompt := fmt.Sprintf("Using the subject %q, generate a trivia question for the theme %q that refers to a picture of it.%s\n%s", subject, theme, avoidClause(exclude), jsonInstructions)
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return domain.TriviaQuestion{}, err
	}
	q, err := parseQuestion(text)
	if err != nil {
		return domain.TriviaQuestion{}, err
	}
	q.Kind = domain.KindVisual
	q.ImageRef = image
	q.Difficulty = domain.DifficultyNormal
	return q, nil
}

func (g *GeminiSource) rollVisual() bool {
	if g.cfg.VisualChance <= 0 || g.cfg.ImageModel == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < g.cfg.VisualChance
}

func avoidClause(exclude []string) string {
	if len(exclude) == 0 {
		return ""
	}
	return " Do not repeat any of these questions: [" + strings.Join(exclude, "; ") + "]."
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generate sends one prompt to generateContent and returns the text answer
func (g *GeminiSource) generate(ctx context.Context, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)

	raw, err := g.post(ctx, endpoint, body)
	if err != nil {
		return "", err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("gemini error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini responded without text")
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount int `json:"sampleCount"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// generateImage renders subject and returns it as a data URI
func (g *GeminiSource) generateImage(ctx context.Context, subject string) (string, error) {
	body := imagenRequest{
		Instances:  []imagenInstance{{Prompt: "A clear, colorful illustration of " + subject}},
		Parameters: imagenParameters{SampleCount: 1},
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:predict", g.cfg.BaseURL, g.cfg.ImageModel)

	raw, err := g.post(ctx, endpoint, body)
	if err != nil {
		return "", err
	}

	var parsed imagenResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if len(parsed.Predictions) == 0 || parsed.Predictions[0].BytesBase64Encoded == "" {
		return "", errors.New("image model returned no image")
	}
	mime := parsed.Predictions[0].MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + parsed.Predictions[0].BytesBase64Encoded, nil
}

func (g *GeminiSource) post(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", strings.TrimSpace(g.cfg.APIKey))

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reach gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini request failed (%d)", resp.StatusCode)
	}
	return raw, nil
}
