package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string
	APP_URL    string

	LENGOPAY_API_KEY     string
	LENGOPAY_MERCHANT_ID string
	LENGOPAY_BASE_URL    string

	SUBSCRIPTION_AMOUNT   float64
	SUBSCRIPTION_CURRENCY string

	SMTP_HOST     string
	SMTP_PORT     string
	SMTP_FROM     string
	SMTP_PASSWORD string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	APP_URL = getEnv("APP_URL", "http://localhost:"+PORT)

	LENGOPAY_API_KEY = mustEnv("LENGOPAY_API_KEY")
	LENGOPAY_MERCHANT_ID = mustEnv("LENGOPAY_MERCHANT_ID")
	LENGOPAY_BASE_URL = getEnv("LENGOPAY_BASE_URL", "https://api.lengopay.com")

	// Single global price point for the monthly subscription.
	SUBSCRIPTION_AMOUNT = getEnvFloat("SUBSCRIPTION_AMOUNT", 50000)
	SUBSCRIPTION_CURRENCY = getEnv("SUBSCRIPTION_CURRENCY", "GNF")

	SMTP_HOST = getEnv("SMTP_HOST", "")
	SMTP_PORT = getEnv("SMTP_PORT", "587")
	SMTP_FROM = getEnv("SMTP_FROM", "")
	SMTP_PASSWORD = getEnv("SMTP_PASSWORD", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("Invalid value for %s: %q", key, value)
	}
	return f
}
