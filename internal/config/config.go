package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Embedding EmbeddingConfig
	Ingestion IngestionConfig
	Usage     UsageConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type StorageConfig struct {
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	Bucket       string
}

type EmbeddingConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	BatchSize  int
	// BatchDelayMs is the pause between sub-batches, respecting the
	// provider's rate limits.
	BatchDelayMs int
	CacheTTLMin  int
}

type IngestionConfig struct {
	MaxChunkLength      int
	ChunkOverlap        int
	DocumentBatchSize   int
	RetryAttempts       int
	RetryInitialDelayMs int
}

type UsageConfig struct {
	MonthlyTokenLimit int64
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
			IngestTopic:        getEnv("INGEST_KNOWLEDGE_TOPIC_NAME", "INGEST_KNOWLEDGE"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
			AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
			AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
			Bucket:       getEnv("KB_BUCKET_NAME", "chatbot-kb-docs"),
		},
		Embedding: EmbeddingConfig{
			APIKey:       getEnv("EMBEDDING_API_KEY", ""),
			BaseURL:      getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1/embeddings"),
			Model:        getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			Dimensions:   getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			BatchSize:    getEnvAsInt("EMBEDDING_BATCH_SIZE", 20),
			BatchDelayMs: getEnvAsInt("EMBEDDING_BATCH_DELAY_MS", 200),
			CacheTTLMin:  getEnvAsInt("EMBEDDING_CACHE_TTL_MIN", 1440),
		},
		Ingestion: IngestionConfig{
			MaxChunkLength:      getEnvAsInt("INGEST_MAX_CHUNK_LENGTH", 800),
			ChunkOverlap:        getEnvAsInt("INGEST_CHUNK_OVERLAP", 100),
			DocumentBatchSize:   getEnvAsInt("INGEST_DOCUMENT_BATCH_SIZE", 5),
			RetryAttempts:       getEnvAsInt("INGEST_RETRY_ATTEMPTS", 3),
			RetryInitialDelayMs: getEnvAsInt("INGEST_RETRY_INITIAL_DELAY_MS", 500),
		},
		Usage: UsageConfig{
			MonthlyTokenLimit: int64(getEnvAsInt("EMBEDDING_MONTHLY_TOKEN_LIMIT", 1_000_000)),
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
