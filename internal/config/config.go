package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	JWTSecret    string
	MongoURI     string
	DBName       string
	SkipAuth     bool
	Environment  string
	AppId        string
	ReportingDSN string // Postgres connection string for the reporting mirror
	DebounceMs   int    // quiet period for live search sessions
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:       getEnv("DB_NAME", "go-bizops"),
		SkipAuth:     getEnv("SKIP_AUTH", "false") == "true",
		Environment:  getEnv("ENVIRONMENT", "development"),
		AppId:        getEnv("APP_ID", "go-bizops"),
		ReportingDSN: getEnv("REPORTING_DSN", ""),
		DebounceMs:   getEnvInt("DEBOUNCE_MS", 300),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
