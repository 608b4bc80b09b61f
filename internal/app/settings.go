package app

import (
	"time"

	"trivia/internal/config"
	"trivia/internal/domain"
)

// Settings tune a session's rounds
type Settings struct {
	RoundSeconds       int
	BatchSize          int
	MatchmakingTimeout time.Duration
	MaxBots            int
	BotJoinMinDelay    time.Duration
	BotJoinMaxDelay    time.Duration
	Bots               BotProfile
	TieBreak           BotProfile
	PostAnswerDelay    time.Duration
}

// DefaultSettings mirrors the configuration defaults
func DefaultSettings() Settings {
	return Settings{
		RoundSeconds:       60,
		BatchSize:          15,
		MatchmakingTimeout: 5 * time.Second,
		MaxBots:            domain.MaxBots,
		BotJoinMinDelay:    600 * time.Millisecond,
		BotJoinMaxDelay:    4500 * time.Millisecond,
		Bots:               BotProfile{Accuracy: 0.7, MinDelay: time.Second, MaxDelay: 5 * time.Second},
		TieBreak:           BotProfile{Accuracy: 0.65, MinDelay: 500 * time.Millisecond, MaxDelay: 3 * time.Second},
		PostAnswerDelay:    1500 * time.Millisecond,
	}
}

// SettingsFromConfig builds session settings from the game configuration
func SettingsFromConfig(cfg config.GameConfig) Settings {
	return Settings{
		RoundSeconds:       cfg.RoundSeconds,
		BatchSize:          cfg.QuestionBatchSize,
		MatchmakingTimeout: cfg.MatchmakingTimeout,
		MaxBots:            min(max(cfg.MaxBots, 0), domain.MaxBots),
		BotJoinMinDelay:    cfg.BotJoinMinDelay,
		BotJoinMaxDelay:    cfg.BotJoinMaxDelay,
		Bots: BotProfile{
			Accuracy: cfg.BotAccuracy,
			MinDelay: cfg.BotMinDelay,
			MaxDelay: cfg.BotMaxDelay,
		},
		TieBreak: BotProfile{
			Accuracy: cfg.TieBreakAccuracy,
			MinDelay: cfg.TieBreakMinDelay,
			MaxDelay: cfg.TieBreakMaxDelay,
		},
		PostAnswerDelay: cfg.PostAnswerDelay,
	}
}
