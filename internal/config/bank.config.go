package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	DataDir  string

	RedisAddr string
	RedisPass string

	JWTSecret  string
	OTPTTL     time.Duration
	SessionTTL time.Duration

	// Simulated delays. Zero disables them; tests run with zero.
	ProcessingDelay time.Duration
	EmailDelay      time.Duration

	// Seed admin, created on first boot against an empty registry.
	AdminEmail           string
	AdminPassword        string
	AdminName            string
	AdminCheckingBalance string
	AdminSavingsBalance  string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Bank: No .env file found, relying on system env vars")
	}
	otpTTL, _ := time.ParseDuration(getEnv("OTP_TTL", "5m"))
	sessionTTL, _ := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	processing, _ := time.ParseDuration(getEnv("PROCESSING_DELAY", "2s"))
	emailDelay, _ := time.ParseDuration(getEnv("EMAIL_DELAY", "1s"))

	return Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DataDir:              getEnv("DATA_DIR", "./data"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPass:            getEnv("REDIS_PASS", ""),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret-change-me"),
		OTPTTL:               otpTTL,
		SessionTTL:           sessionTTL,
		ProcessingDelay:      processing,
		EmailDelay:           emailDelay,
		AdminEmail:           getEnv("ADMIN_EMAIL", "admin@usbank.demo"),
		AdminPassword:        getEnv("ADMIN_PASSWORD", "admin123"),
		AdminName:            getEnv("ADMIN_NAME", "Bank Administrator"),
		AdminCheckingBalance: getEnv("ADMIN_CHECKING_BALANCE", "100000"),
		AdminSavingsBalance:  getEnv("ADMIN_SAVINGS_BALANCE", "50000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
