package questions

import (
	"context"
	"log/slog"
)

// FallbackThemes wraps a generator so a theme is always available
type FallbackThemes struct {
	gen      ThemeGenerator
	fallback string
	logger   *slog.Logger
}

// NewFallbackThemes creates a theme provider. gen may be nil.
func NewFallbackThemes(gen ThemeGenerator, fallback string, logger *slog.Logger) *FallbackThemes {
	if fallback == "" {
		fallback = DefaultTheme
	}
	return &FallbackThemes{gen: gen, fallback: fallback, logger: logger}
}

// Theme returns a generated theme or the fallback. It never fails.
func (f *FallbackThemes) Theme(ctx context.Context) string {
	if f.gen == nil {
		return f.fallback
	}

	theme, err := f.gen.FetchTheme(ctx)
	if err != nil || theme == "" {
		f.logger.Warn("theme generation failed, using fallback", "fallback", f.fallback, "error", err)
		return f.fallback
	}
	return theme
}
