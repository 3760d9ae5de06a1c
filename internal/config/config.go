package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AIGatewayKey   string
	AIGatewayURL   string
	AIModel        string
	DatabaseURL    string
	HTTPPort       string
	LogLevel       string
	JWTSecret      string
	PublishableKey string
	AdminEmail     string
	AdminPassword  string

	// Chat rate limiting (fixed window, per caller address).
	ChatRateLimit         int
	ChatRateWindowSeconds int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		AIGatewayKey:          getEnv("AI_GATEWAY_API_KEY", ""),
		AIGatewayURL:          getEnv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1/chat/completions"),
		AIModel:               getEnv("AI_MODEL", "google/gemini-3-flash-preview"),
		DatabaseURL:           getEnv("DATABASE_URL", "bokeeb_site.db"),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		PublishableKey:        getEnv("PUBLISHABLE_KEY", ""),
		AdminEmail:            getEnv("ADMIN_EMAIL", ""),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		ChatRateLimit:         getEnvAsInt("CHAT_RATE_LIMIT", 10),
		ChatRateWindowSeconds: getEnvAsInt("CHAT_RATE_WINDOW_SECONDS", 60),
	}

	if AppConfig.AIGatewayKey == "" {
		log.Fatal("AI_GATEWAY_API_KEY environment variable is required")
	}

	if AppConfig.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	if AppConfig.PublishableKey == "" {
		log.Fatal("PUBLISHABLE_KEY environment variable is required")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
