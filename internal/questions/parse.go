package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"trivia/internal/domain"
)

var (
	fencePattern         = regexp.MustCompile("```(?:json|JSON)?")
	trailingCommaPattern = regexp.MustCompile(`,\s*([\]}])`)
)

var errNoJSON = errors.New("no JSON found in model output")

// rawQuestion is the shape the model is asked to answer with
type rawQuestion struct {
	Category      string   `json:"category"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

func (r rawQuestion) toDomain() domain.TriviaQuestion {
	opts := make([]string, len(r.Options))
	for i, o := range r.Options {
		opts[i] = strings.TrimSpace(o)
	}
	return domain.TriviaQuestion{
		Category:      strings.TrimSpace(r.Category),
		Text:          strings.TrimSpace(r.Question),
		Options:       opts,
		CorrectAnswer: strings.TrimSpace(r.CorrectAnswer),
		Kind:          domain.KindText,
	}
}

// extractJSON strips markdown fences and isolates the outermost block
// delimited by open and close, dropping trailing commas.
func extractJSON(raw string, open, close string) (string, error) {
	cleaned := fencePattern.ReplaceAllString(raw, "")
	start := strings.Index(cleaned, open)
	end := strings.LastIndex(cleaned, close)
	if start < 0 || end <= start {
		return "", errNoJSON
	}
	block := cleaned[start : end+1]
	return trailingCommaPattern.ReplaceAllString(block, "$1"), nil
}

// parseQuestion decodes a single question object from model output
func parseQuestion(raw string) (domain.TriviaQuestion, error) {
	block, err := extractJSON(raw, "{", "}")
	if err != nil {
		return domain.TriviaQuestion{}, err
	}

	var rq rawQuestion
	if err := json.Unmarshal([]byte(block), &rq); err != nil {
		return domain.TriviaQuestion{}, fmt.Errorf("decode question: %w", err)
	}

	q := rq.toDomain()
	if err := q.Validate(); err != nil {
		return domain.TriviaQuestion{}, err
	}
	return q, nil
}

// parseQuestionList decodes an array of questions, keeping only valid items
func parseQuestionList(raw string) ([]domain.TriviaQuestion, error) {
	// Some responses carry a single object instead of an array
	obj, arr := strings.Index(raw, "{"), strings.Index(raw, "[")
	if obj >= 0 && (arr < 0 || obj < arr) {
		q, err := parseQuestion(raw)
		if err != nil {
			return nil, err
		}
		return []domain.TriviaQuestion{q}, nil
	}

	block, err := extractJSON(raw, "[", "]")
	if err != nil {
		return nil, err
	}

	var items []rawQuestion
	if err := json.Unmarshal([]byte(block), &items); err != nil {
		return nil, fmt.Errorf("decode question list: %w", err)
	}

	out := make([]domain.TriviaQuestion, 0, len(items))
	for _, item := range items {
		q := item.toDomain()
		if q.Validate() != nil {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// sanitizeTheme keeps the first line of a theme and drops quoting
func sanitizeTheme(raw string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(raw), "\n")
	line = strings.Trim(strings.TrimSpace(line), "\"'*`.")
	line = strings.TrimPrefix(line, "Theme:")
	return strings.TrimSpace(line)
}
