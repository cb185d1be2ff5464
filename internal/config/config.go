package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Host        string
	Port        string
	Environment string
	GinMode     string

	// Database
	DatabaseURL string

	// Redis (job queue)
	RedisURL string

	// File storage
	UploadDir     string
	MaxUploadMB   int64
	WorkerRetries int

	// Embedding service (OpenAI compatible)
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingModel      string
	EmbeddingDimensions int

	// Answer LLM
	LLMProvider      string
	LLMModel         string
	OpenRouterAPIKey string
	OpenAIAPIKey     string
	OllamaBaseURL    string

	// Extraction sidecars
	RenderServiceURL string
	OCRServiceURL    string

	// Chunking and retrieval
	ChunkSize             int
	ChunkOverlap          int
	RAGTopK               int
	SummaryTopKPerSection int
	SummaryFallbackTopK   int
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("GIN_MODE", "debug")

	v.SetDefault("DATABASE_URL", "postgres://localhost:5432/paperdex?sslmode=disable")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MAX_UPLOAD_MB", 50)
	v.SetDefault("WORKER_MAX_RETRIES", 3)

	v.SetDefault("EMBEDDING_API_KEY", "")
	v.SetDefault("EMBEDDING_BASE_URL", "http://localhost:8080/v1")
	v.SetDefault("EMBEDDING_MODEL", "all-MiniLM-L6-v2")
	v.SetDefault("EMBEDDING_DIMENSIONS", 384)

	v.SetDefault("LLM_PROVIDER", "openrouter")
	v.SetDefault("LLM_MODEL", "meta-llama/llama-3.3-70b-instruct")
	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434")

	v.SetDefault("RENDER_SERVICE_URL", "http://localhost:8091")
	v.SetDefault("OCR_SERVICE_URL", "http://localhost:8092")

	v.SetDefault("CHUNK_TOKENS", 500)
	v.SetDefault("CHUNK_OVERLAP", 50)
	v.SetDefault("RAG_TOP_K", 5)
	v.SetDefault("SUMMARY_TOP_K_PER_SECTION", 8)
	v.SetDefault("SUMMARY_FALLBACK_TOP_K", 15)

	return &Config{
		Host:        v.GetString("HOST"),
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		GinMode:     v.GetString("GIN_MODE"),

		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisURL:    v.GetString("REDIS_URL"),

		UploadDir:     v.GetString("UPLOAD_DIR"),
		MaxUploadMB:   v.GetInt64("MAX_UPLOAD_MB"),
		WorkerRetries: v.GetInt("WORKER_MAX_RETRIES"),

		EmbeddingAPIKey:     v.GetString("EMBEDDING_API_KEY"),
		EmbeddingBaseURL:    v.GetString("EMBEDDING_BASE_URL"),
		EmbeddingModel:      v.GetString("EMBEDDING_MODEL"),
		EmbeddingDimensions: v.GetInt("EMBEDDING_DIMENSIONS"),

		LLMProvider:      v.GetString("LLM_PROVIDER"),
		LLMModel:         v.GetString("LLM_MODEL"),
		OpenRouterAPIKey: v.GetString("OPENROUTER_API_KEY"),
		OpenAIAPIKey:     v.GetString("OPENAI_API_KEY"),
		OllamaBaseURL:    v.GetString("OLLAMA_BASE_URL"),

		RenderServiceURL: v.GetString("RENDER_SERVICE_URL"),
		OCRServiceURL:    v.GetString("OCR_SERVICE_URL"),

		ChunkSize:             v.GetInt("CHUNK_TOKENS"),
		ChunkOverlap:          v.GetInt("CHUNK_OVERLAP"),
		RAGTopK:               v.GetInt("RAG_TOP_K"),
		SummaryTopKPerSection: v.GetInt("SUMMARY_TOP_K_PER_SECTION"),
		SummaryFallbackTopK:   v.GetInt("SUMMARY_FALLBACK_TOP_K"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// MaxUploadBytes is the upload size ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

// LLMAPIKey returns the key matching the configured provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.OpenRouterAPIKey
}
