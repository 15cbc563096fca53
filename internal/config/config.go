package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	Port           string
	ServiceName    string
	ServiceID      string
	ServiceAddress string
	AllowedOrigins []string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURI      string
	RabbitMQExchange string

	ConsulAddress string

	LLMProvider     string
	LLMTimeout      time.Duration
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string

	JWTSecret   string
	TokenExpiry time.Duration

	InvitationRequired bool
	FeedbackRateLimit  int
	FeedbackRateWindow time.Duration
	StalePracticeAge   time.Duration
}

// Load reads the environment, after merging a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Env:            firstEnv("development", "APP_ENV", "NODE_ENV"),
		Port:           getEnvOrDefault("PORT", "8080"),
		ServiceName:    getEnvOrDefault("SERVICE_NAME", "practice-service"),
		ServiceAddress: getEnvOrDefault("SERVICE_ADDRESS", "practice-service"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")),

		MongoURI:      firstEnv("mongodb://localhost:27017", "MONGO_URI", "DATABASE_URL"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "practice_service"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword: getEnvOrDefault("REDIS_PWD", ""),
		RedisDB:       getIntOrDefault("REDIS_DB", 0),

		RabbitMQURI:      getEnvOrDefault("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnvOrDefault("RABBITMQ_EXCHANGE", "practice.events"),

		ConsulAddress: getEnvOrDefault("CONSUL_ADDRESS", ""),

		LLMProvider:     getEnvOrDefault("LLM_PROVIDER", "openai"),
		LLMTimeout:      getDurationOrDefault("LLM_TIMEOUT", 45*time.Second),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnvOrDefault("OPENAI_BASE_URL", ""),
		OpenAIModel:     getEnvOrDefault("OPENAI_MODEL", ""),
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnvOrDefault("ANTHROPIC_MODEL", ""),
		GeminiAPIKey:    getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:     getEnvOrDefault("GEMINI_MODEL", ""),

		JWTSecret:   getEnvOrDefault("JWT_SECRET", ""),
		TokenExpiry: time.Duration(getIntOrDefault("TOKEN_EXPIRY_HOURS", 24)) * time.Hour,

		InvitationRequired: getBoolOrDefault("INVITATION_REQUIRED", false),
		FeedbackRateLimit:  getIntOrDefault("FEEDBACK_RATE_LIMIT", 5),
		FeedbackRateWindow: getDurationOrDefault("FEEDBACK_RATE_WINDOW", time.Hour),
		StalePracticeAge:   getDurationOrDefault("STALE_PRACTICE_AGE", 7*24*time.Hour),
	}
	cfg.ServiceID = cfg.ServiceName + "-" + getEnvOrDefault("HOSTNAME", "1")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Println("JWT_SECRET not set, using an insecure development secret")
		c.JWTSecret = "development-secret"
	}
	if c.FeedbackRateLimit < 1 {
		return fmt.Errorf("FEEDBACK_RATE_LIMIT must be positive, got %d", c.FeedbackRateLimit)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Error parsing %s=%q as int, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Error parsing %s=%q as bool, using %t", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Error parsing %s=%q as duration, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
