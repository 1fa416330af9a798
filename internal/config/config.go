package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Extractor ExtractorConfig
	Models    ModelsConfig
	Topics    TopicsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

// BackendConfig points at the AI gateway serving enhanced-chat, document-chat
// and media generation.
type BackendConfig struct {
	BaseURL        string
	APIToken       string
	OrganizationId string
}

type ExtractorConfig struct {
	BaseURL string
}

type ModelsConfig struct {
	ChatModel         string
	ChatProvider      string
	DocumentChatModel string
	ImageModel        string
	MaxTokens         int
}

type TopicsConfig struct {
	ExtractAttachment string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("AI_BACKEND_BASE_URL", "http://localhost:8081"),
			APIToken:       getEnv("AI_BACKEND_API_TOKEN", ""),
			OrganizationId: getEnv("AI_BACKEND_ORGANIZATION_ID", ""),
		},
		Extractor: ExtractorConfig{
			BaseURL: getEnv("EXTRACTOR_BASE_URL", "http://localhost:8082"),
		},
		Models: ModelsConfig{
			ChatModel:         getEnv("CHAT_MODEL", "gpt-4o-mini"),
			ChatProvider:      getEnv("CHAT_PROVIDER", "openai"),
			DocumentChatModel: getEnv("DOCUMENT_CHAT_MODEL", "gpt-4o"),
			ImageModel:        getEnv("IMAGE_MODEL", "gpt-image-1"),
			MaxTokens:         getEnvAsInt("CHAT_MAX_TOKENS", 4096),
		},
		Topics: TopicsConfig{
			ExtractAttachment: getEnv("EXTRACT_ATTACHMENT_TOPIC_NAME", "EXTRACT_ATTACHMENT"),
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
