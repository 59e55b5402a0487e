package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Redis Configuration
	REDIS_URL string
	// DigitalOcean Spaces Configuration
	DO_SPACES_ACCESS_KEY   string
	DO_SPACES_SECRET_KEY   string
	DO_SPACES_BUCKET       string
	DO_SPACES_REGION       string
	DO_SPACES_ENDPOINT     string
	DO_SPACES_CDN_ENDPOINT string
	// Model provider
	MODEL_PROVIDER     string // "openai" (OpenAI-compatible, DigitalOcean inference by default) or "gemini"
	MODEL_ACCESS_KEY   string
	MODEL_BASE_URL     string
	GEMINI_API_KEY     string
	QA_MODEL           string
	FALLBACK_MODEL     string
	VISION_MODEL       string
	MODEL_CALL_TIMEOUT time.Duration
	// Retry and rate limiting
	MAX_RETRIES           int
	INITIAL_RETRY_DELAY   time.Duration
	MAX_RETRY_DELAY       time.Duration
	RATE_LIMIT_BATCH_SIZE int
	RATE_LIMIT_COOLDOWN   time.Duration
	// OCR
	OCR_SERVICE_URL string
	OCR_TIMEOUT     time.Duration
	// Pipeline
	MIN_TEXT_LENGTH       int
	QUESTION_TYPE         string
	ANSWER_OPTIONS        int
	MAX_CONCURRENT_CHUNKS int
	UPLOAD_DIR            string
	MAX_UPLOAD_MB         int
	CRON_ENABLED          bool
	ARTIFACT_RETENTION    time.Duration // 0 keeps artifacts forever
	// HTTP
	ALLOWED_ORIGINS    string
	SUBMIT_RATE_LIMIT  int
	SUBMIT_RATE_WINDOW time.Duration
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  getString("DB_SSL_MODE", "disable"),
		PORT:         port,
		// Redis
		REDIS_URL: getString("REDIS_URL", "redis://localhost:6379/0"),
		// Spaces
		DO_SPACES_ACCESS_KEY:   os.Getenv("DO_SPACES_ACCESS_KEY"),
		DO_SPACES_SECRET_KEY:   os.Getenv("DO_SPACES_SECRET_KEY"),
		DO_SPACES_BUCKET:       os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:       os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT:     os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_ENDPOINT: os.Getenv("DO_SPACES_CDN_ENDPOINT"),
		// Model provider
		MODEL_PROVIDER:     getString("MODEL_PROVIDER", "openai"),
		MODEL_ACCESS_KEY:   os.Getenv("MODEL_ACCESS_KEY"),
		MODEL_BASE_URL:     os.Getenv("MODEL_BASE_URL"),
		GEMINI_API_KEY:     os.Getenv("GEMINI_API_KEY"),
		QA_MODEL:           os.Getenv("QA_MODEL"),
		FALLBACK_MODEL:     os.Getenv("FALLBACK_MODEL"),
		VISION_MODEL:       os.Getenv("VISION_MODEL"),
		MODEL_CALL_TIMEOUT: getDuration("MODEL_CALL_TIMEOUT", 2*time.Minute),
		// Retry and rate limiting
		MAX_RETRIES:           getInt("MAX_RETRIES", 5),
		INITIAL_RETRY_DELAY:   getDuration("INITIAL_RETRY_DELAY", 2*time.Second),
		MAX_RETRY_DELAY:       getDuration("MAX_RETRY_DELAY", 60*time.Second),
		RATE_LIMIT_BATCH_SIZE: getInt("RATE_LIMIT_BATCH_SIZE", 3),
		RATE_LIMIT_COOLDOWN:   getDuration("RATE_LIMIT_COOLDOWN", 10*time.Second),
		// OCR
		OCR_SERVICE_URL: getString("OCR_SERVICE_URL", "http://127.0.0.1:8081"),
		OCR_TIMEOUT:     getDuration("OCR_TIMEOUT", 2*time.Minute),
		// Pipeline
		MIN_TEXT_LENGTH:       getInt("MIN_TEXT_LENGTH", 100),
		QUESTION_TYPE:         getString("QUESTION_TYPE", "MULTIPLECHOICE"),
		ANSWER_OPTIONS:        getInt("ANSWER_OPTIONS", 4),
		MAX_CONCURRENT_CHUNKS: getInt("MAX_CONCURRENT_CHUNKS", 3),
		UPLOAD_DIR:            getString("UPLOAD_DIR", os.TempDir()),
		MAX_UPLOAD_MB:         getInt("MAX_UPLOAD_MB", 50),
		CRON_ENABLED:          os.Getenv("CRON_ENABLED") != "false", // Default to enabled
		ARTIFACT_RETENTION:    getDuration("ARTIFACT_RETENTION", 0),
		// HTTP
		ALLOWED_ORIGINS:    getString("ALLOWED_ORIGINS", "*"),
		SUBMIT_RATE_LIMIT:  getInt("SUBMIT_RATE_LIMIT", 20),
		SUBMIT_RATE_WINDOW: getDuration("SUBMIT_RATE_WINDOW", time.Minute),
	}

	return envVariables, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("10s") or a bare number of seconds
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
