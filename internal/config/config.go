package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string
	FrontendURL string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth
	JWTSecret string

	// Groq (book search + report prose)
	GroqAPIKey string
	GroqAPIURL string
	GroqModel  string

	// Stripe
	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string

	// SendGrid
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

func Load() *Config {
	// Missing .env is fine; the environment may be populated directly.
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "postgres"),
		DBPassword:           getEnv("DB_PASSWORD", ""),
		DBName:               getEnv("DB_NAME", "bookscope_db"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		GroqAPIKey:           getEnv("GROQ_API_KEY", ""),
		GroqAPIURL:           getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		GroqModel:            getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		StripeWebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		FromEmail:            getEnv("FROM_EMAIL", "reports@bookscope.app"),
		FromName:             getEnv("FROM_NAME", "Bookscope"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
