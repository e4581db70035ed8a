package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	RateLimitPerMinute int
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini   string
	HuggingFace    string
	IndexDocsTopic string // Watermill topic for document indexing
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string // e.g. "llama3.1:8b"
	EmbedCacheTTL     time.Duration
}

type RagConfig struct {
	MaxIterations  int
	SessionTimeout time.Duration
	TopK           int
	DenseWeight    float64
	LexicalWeight  float64
	ScoreThreshold float64
	// SupportThreshold is the minimum entailment strength for a passage to
	// count as supporting a claim during verification.
	SupportThreshold float64
	GraphDepth       int
	// VerifierLLM enables the LLM second opinion for claims the lexical
	// entailment check rejects.
	VerifierLLM bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:    getEnv("HUGGINGFACE_API_KEY", ""),
			IndexDocsTopic: getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3.1:8b"),
			EmbedCacheTTL:     getEnvAsDuration("EMBED_CACHE_TTL", 10*time.Minute),
		},
		Rag: RagConfig{
			MaxIterations:    getEnvAsInt("RAG_MAX_ITERATIONS", 3),
			SessionTimeout:   getEnvAsDuration("RAG_SESSION_TIMEOUT", 30*time.Second),
			TopK:             getEnvAsInt("RAG_TOP_K", 10),
			DenseWeight:      getEnvAsFloat("RAG_DENSE_WEIGHT", 0.7),
			LexicalWeight:    getEnvAsFloat("RAG_LEXICAL_WEIGHT", 0.3),
			ScoreThreshold:   getEnvAsFloat("RAG_SCORE_THRESHOLD", 0.25),
			SupportThreshold: getEnvAsFloat("RAG_SUPPORT_THRESHOLD", 0.5),
			GraphDepth:       getEnvAsInt("RAG_GRAPH_DEPTH", 2),
			VerifierLLM:      getEnv("RAG_VERIFIER_LLM", "false") == "true",
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
