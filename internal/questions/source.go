// Package questions supplies trivia questions and round themes.
//
// A Pipeline sits between the game session and a Source. It validates what
// the source returns, shuffles options exactly once per fetched question and
// falls back from batch to single fetches before reporting a supply failure.
package questions

import (
	"context"

	"trivia/internal/domain"
)

// DefaultTheme is used whenever no theme can be generated
const DefaultTheme = "General Knowledge"

// Source produces trivia questions for a theme
type Source interface {
	FetchThemeBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error)
	FetchSingle(ctx context.Context, theme string, exclude []string, difficulty domain.Difficulty) (domain.TriviaQuestion, error)
}

// ThemeGenerator produces a short theme label for a round
type ThemeGenerator interface {
	FetchTheme(ctx context.Context) (string, error)
}
