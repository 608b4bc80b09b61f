package questions

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"trivia/internal/domain"
)

// Pipeline turns raw source output into playable questions
type Pipeline struct {
	source  Source
	retries int
	logger  *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPipeline creates a pipeline that retries single fetches up to retries times
func NewPipeline(source Source, retries int, rng *rand.Rand, logger *slog.Logger) *Pipeline {
	if retries < 1 {
		retries = 1
	}
	return &Pipeline{
		source:  source,
		retries: retries,
		logger:  logger,
		rng:     rng,
	}
}

// LoadBatch returns between one and count questions for theme.
// A failed or empty batch falls back to single fetches; if those fail too
// the error wraps domain.ErrQuestionSupply.
func (p *Pipeline) LoadBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error) {
	if count < 1 {
		count = 1
	}

	items, err := p.source.FetchThemeBatch(ctx, theme, count)
	if err != nil {
		p.logger.Warn("batch fetch failed, falling back to single questions", "theme", theme, "error", err)
	}

	batch := p.prepare(items, count)
	if len(batch) > 0 {
		return batch, nil
	}
	if err == nil {
		p.logger.Warn("batch fetch returned no valid questions", "theme", theme)
	}

	q, err := p.LoadSingle(ctx, theme, nil, domain.DifficultyNormal)
	if err != nil {
		return nil, err
	}
	return []domain.TriviaQuestion{q}, nil
}

// LoadSingle fetches one question with bounded retries
func (p *Pipeline) LoadSingle(ctx context.Context, theme string, exclude []string, difficulty domain.Difficulty) (domain.TriviaQuestion, error) {
	var lastErr error
	for attempt := 1; attempt <= p.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.TriviaQuestion{}, fmt.Errorf("%w: %v", domain.ErrQuestionSupply, err)
		}

		q, err := p.source.FetchSingle(ctx, theme, exclude, difficulty)
		if err == nil {
			q = normalize(q)
			if q.Difficulty == "" {
				q.Difficulty = difficulty
			}
			if err = q.Validate(); err == nil {
				return p.shuffle(q), nil
			}
		}

		lastErr = err
		p.logger.Debug("single fetch failed", "theme", theme, "attempt", attempt, "error", err)
	}
	return domain.TriviaQuestion{}, fmt.Errorf("%w: theme %q: %v", domain.ErrQuestionSupply, theme, lastErr)
}

// prepare drops invalid and duplicate items, shuffles options and caps the batch
func (p *Pipeline) prepare(items []domain.TriviaQuestion, count int) []domain.TriviaQuestion {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.TriviaQuestion, 0, min(len(items), count))

	for _, q := range items {
		q = normalize(q)
		if q.Validate() != nil {
			continue
		}
		if _, dup := seen[q.Text]; dup {
			continue
		}
		seen[q.Text] = struct{}{}
		out = append(out, p.shuffle(q))
		if len(out) == count {
			break
		}
	}
	return out
}

func (p *Pipeline) shuffle(q domain.TriviaQuestion) domain.TriviaQuestion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return q.Shuffled(p.rng)
}

func normalize(q domain.TriviaQuestion) domain.TriviaQuestion {
	if q.Kind == "" {
		q.Kind = domain.KindText
	}
	return q
}
