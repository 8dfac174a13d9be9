package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Keys          APIKeys
	Ai            AIConfig
	Session       SessionConfig
	Interview     InterviewConfig
	Transcription TranscriptionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI      string
	HuggingFace string
}

type AIConfig struct {
	LLMProvider   string // "openai", "ollama" or "huggingface"
	LLMModel      string
	OllamaBaseURL string
}

type SessionConfig struct {
	Store string // "memory" or "redis"
	TTL   time.Duration
}

type InterviewConfig struct {
	PromptsDir             string
	TopicsFile             string
	ProcessInfoFile        string
	MaxImprovementAttempts int
}

type TranscriptionConfig struct {
	Model    string
	Language string
	Timeout  time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-5.2"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Session: SessionConfig{
			Store: strings.ToLower(getEnv("SESSION_STORE", "memory")),
			TTL:   getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Interview: InterviewConfig{
			PromptsDir:             getEnv("PROMPTS_DIR", "prompts"),
			TopicsFile:             getEnv("TOPICS_FILE", "config/topics.json"),
			ProcessInfoFile:        getEnv("PROCESS_INFO_FILE", "config/process-info.json"),
			MaxImprovementAttempts: getEnvAsInt("MAX_IMPROVEMENT_ATTEMPTS", 3),
		},
		Transcription: TranscriptionConfig{
			Model:    getEnv("TRANSCRIPTION_MODEL", "whisper-1"),
			Language: getEnv("TRANSCRIPTION_LANGUAGE", "de"),
			Timeout:  getEnvAsDuration("TRANSCRIPTION_TIMEOUT", 90*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
