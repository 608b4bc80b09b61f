package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Game      GameConfig
	Questions QuestionsConfig
	Storage   StorageConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds round timing and bot behavior
type GameConfig struct {
	RoundSeconds        int
	QuestionBatchSize   int
	SingleFetchRetries  int
	MatchmakingTimeout  time.Duration
	MaxBots             int
	BotJoinMinDelay     time.Duration
	BotJoinMaxDelay     time.Duration
	BotAccuracy         float64
	BotMinDelay         time.Duration
	BotMaxDelay         time.Duration
	TieBreakAccuracy    float64
	TieBreakMinDelay    time.Duration
	TieBreakMaxDelay    time.Duration
	PostAnswerDelay     time.Duration
	StaleSessionTimeout time.Duration
}

// QuestionsConfig holds question and theme generation settings
type QuestionsConfig struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	GeminiBaseURL    string
	VisualChance     float64
	Timeout          time.Duration
	FallbackTheme    string
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Driver          string // "memory", "sqlite" or "postgres"
	SQLitePath      string
	DatabaseURL     string
	MigrationsDir   string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Game: GameConfig{
			RoundSeconds:        getEnvInt("ROUND_SECONDS", 60),
			QuestionBatchSize:   getEnvInt("QUESTION_BATCH_SIZE", 15),
			SingleFetchRetries:  getEnvInt("QUESTION_SINGLE_RETRIES", 3),
			MatchmakingTimeout:  getEnvMillis("MATCHMAKING_TIMEOUT_MS", 5000),
			MaxBots:             getEnvInt("MAX_BOTS", 3),
			BotJoinMinDelay:     getEnvMillis("BOT_JOIN_MIN_MS", 600),
			BotJoinMaxDelay:     getEnvMillis("BOT_JOIN_MAX_MS", 4500),
			BotAccuracy:         getEnvFloat("BOT_ACCURACY", 0.7),
			BotMinDelay:         getEnvMillis("BOT_MIN_DELAY_MS", 1000),
			BotMaxDelay:         getEnvMillis("BOT_MAX_DELAY_MS", 5000),
			TieBreakAccuracy:    getEnvFloat("TIEBREAK_ACCURACY", 0.65),
			TieBreakMinDelay:    getEnvMillis("TIEBREAK_MIN_DELAY_MS", 500),
			TieBreakMaxDelay:    getEnvMillis("TIEBREAK_MAX_DELAY_MS", 3000),
			PostAnswerDelay:     getEnvMillis("POST_ANSWER_DELAY_MS", 1500),
			StaleSessionTimeout: time.Duration(getEnvInt("SESSION_STALE_MINUTES", 120)) * time.Minute,
		},
		Questions: QuestionsConfig{
			GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),
			GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			VisualChance:     getEnvFloat("VISUAL_QUESTION_CHANCE", 0.3),
			Timeout:          time.Duration(getEnvInt("QUESTION_TIMEOUT_SECONDS", 30)) * time.Second,
			FallbackTheme:    getEnv("FALLBACK_THEME", "General Knowledge"),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", "memory"),
			SQLitePath:      getEnv("SQLITE_PATH", "./data/trivia.db"),
			DatabaseURL:     getEnv("DATABASE_URL", ""),
			MigrationsDir:   getEnv("MIGRATIONS_DIR", "db/migrations"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(getEnvInt("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat returns an environment variable as a float or a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvMillis reads a millisecond count as a duration
func getEnvMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Millisecond
}
