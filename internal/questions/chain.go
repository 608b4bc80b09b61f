package questions

import (
	"context"
	"errors"
	"log/slog"

	"trivia/internal/domain"
)

// ChainSource asks each source in turn until one delivers
type ChainSource struct {
	sources []Source
	logger  *slog.Logger
}

// NewChainSource creates a source that falls through the given sources in order
func NewChainSource(logger *slog.Logger, sources ...Source) *ChainSource {
	return &ChainSource{sources: sources, logger: logger}
}

// FetchThemeBatch returns the first non-empty batch
func (c *ChainSource) FetchThemeBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error) {
	var errs []error
	for i, s := range c.sources {
		items, err := s.FetchThemeBatch(ctx, theme, count)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		c.logger.Debug("source had no batch", "index", i, "theme", theme, "error", err)
	}
	if len(errs) == 0 {
		return nil, nil
	}
	return nil, errors.Join(errs...)
}

// FetchSingle returns the first question any source produces
func (c *ChainSource) FetchSingle(ctx context.Context, theme string, exclude []string, difficulty domain.Difficulty) (domain.TriviaQuestion, error) {
	var errs []error
	for i, s := range c.sources {
		q, err := s.FetchSingle(ctx, theme, exclude, difficulty)
		if err == nil {
			return q, nil
		}
		errs = append(errs, err)
		c.logger.Debug("source had no single question", "index", i, "theme", theme, "error", err)
	}
	if len(errs) == 0 {
		return domain.TriviaQuestion{}, errors.New("no question sources configured")
	}
	return domain.TriviaQuestion{}, errors.Join(errs...)
}

// QuestionSink keeps questions for later reuse
type QuestionSink interface {
	SaveQuestions(ctx context.Context, theme string, questions []domain.TriviaQuestion) error
}

// RecordingSource passes successful batches from a source on to a sink
type RecordingSource struct {
	Source
	sink   QuestionSink
	logger *slog.Logger
}

// NewRecordingSource wraps source so its batches are saved to sink
func NewRecordingSource(source Source, sink QuestionSink, logger *slog.Logger) *RecordingSource {
	return &RecordingSource{Source: source, sink: sink, logger: logger}
}

// FetchThemeBatch fetches from the wrapped source and records the result
func (r *RecordingSource) FetchThemeBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error) {
	items, err := r.Source.FetchThemeBatch(ctx, theme, count)
	if err != nil || len(items) == 0 {
		return items, err
	}
	if serr := r.sink.SaveQuestions(ctx, theme, items); serr != nil {
		r.logger.Warn("failed to record questions", "theme", theme, "error", serr)
	}
	return items, nil
}
