package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Env  string
	Port string

	DBURL string

	AccessTokenSecret string
	AccessExpiryMin   int
	RefreshExpiryDays int
	ResetExpiryMin    int

	// Rate limiting
	MaxUserAttempts  int
	MaxIPAttempts    int
	LockoutMin       int
	AttemptWindowMin int

	// Outbound email
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	EmailFrom   string
	FrontendURL string
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBURL: mustGetEnv("DB_URL"),

		AccessTokenSecret: mustGetEnv("ACCESS_TOKEN_SECRET"),
		AccessExpiryMin:   getEnvAsInt("ACCESS_TOKEN_EXPIRY", 30),
		RefreshExpiryDays: getEnvAsInt("REFRESH_TOKEN_EXPIRY_DAYS", 30),
		ResetExpiryMin:    getEnvAsInt("RESET_TOKEN_EXPIRY", 30),

		MaxUserAttempts:  getEnvAsInt("MAX_USER_LOGIN_ATTEMPTS", 5),
		MaxIPAttempts:    getEnvAsInt("MAX_IP_LOGIN_ATTEMPTS", 10),
		LockoutMin:       getEnvAsInt("LOCKOUT_MINUTES", 15),
		AttemptWindowMin: getEnvAsInt("ATTEMPT_WINDOW_MINUTES", 10),

		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		EmailFrom:   getEnv("EMAIL_FROM", "no-reply@playzone.local"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5500"),
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
