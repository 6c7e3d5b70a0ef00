package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	FrontendURL string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// RapidAPI profile data provider
	RapidAPIURL         string
	RapidAPIHost        string
	RapidAPIKey         string
	FetchTimeoutSeconds int

	// Auth / JWT
	JWTSecret              string
	AccessTokenTTLMinutes  int
	RefreshTokenTTLMinutes int
	EmailTokenTTLHours     int

	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string

	// Cloudflare Turnstile
	TurnstileURL    string
	TurnstileSecret string

	// Redis (rate limiting)
	RedisURL      string
	RedisPassword string

	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	RateLimitCreatePerHour   int

	// S3-compatible object storage
	S3Endpoint           string
	S3Region             string
	S3AccessKeyID        string
	S3SecretAccessKey    string
	S3Bucket             string
	SignedURLTTLMinutes  int
	MaxUploadSizeBytes   int64
	AvatarMaxDimensionPx int
}

func LoadConfig() (*Config, error) {
	// Load .env file (effective locally, ignored in production when absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		MongoURI:      getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "anycv"),

		RapidAPIURL:         getEnv("RAPIDAPI_URL", ""),
		RapidAPIHost:        getEnv("RAPIDAPI_HOST", ""),
		RapidAPIKey:         getEnv("RAPIDAPI_KEY", ""),
		FetchTimeoutSeconds: getEnvInt("FETCH_TIMEOUT_SECONDS", 30),

		JWTSecret:              getEnv("JWT_SECRET", ""),
		AccessTokenTTLMinutes:  getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15),
		RefreshTokenTTLMinutes: getEnvInt("REFRESH_TOKEN_EXPIRE_MINUTES", 60*24*7), // 7 days
		EmailTokenTTLHours:     getEnvInt("EMAIL_TOKEN_EXPIRE_HOURS", 24),

		SMTPHost:      getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@buildanycv.com"),

		TurnstileURL:    getEnv("TURNSTILE_CHALLENGE_URL", "https://challenges.cloudflare.com/turnstile/v0/siteverify"),
		TurnstileSecret: getEnv("TURNSTILE_SECRET_KEY", ""),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 5),    // 5 login attempts per window
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
		RateLimitCreatePerHour:   getEnvInt("RATE_LIMIT_CREATE_PER_HOUR", 10),   // 10 profile ingestions per hour

		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		S3Region:             getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:        getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		SignedURLTTLMinutes:  getEnvInt("SIGNED_URL_EXPIRE_MINUTES", 15),
		MaxUploadSizeBytes:   int64(getEnvInt("MAX_UPLOAD_SIZE_BYTES", 5*1024*1024)), // 5MB
		AvatarMaxDimensionPx: getEnvInt("AVATAR_MAX_DIMENSION_PX", 512),
	}

	// Basic validation to avoid confusing failures later
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Issued tokens will not survive restarts securely.")
	}
	if cfg.RapidAPIURL == "" || cfg.RapidAPIKey == "" {
		log.Println("WARNING: RapidAPI credentials not configured. Profile ingestion will fail.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
