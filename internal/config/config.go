package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port  int
	Bind  string
	Debug bool

	// Origins allowed to make credentialed browser requests
	CORSOrigins []string

	// Database
	DBPath string

	// Queue; empty URL selects the in-process dispatcher
	QueueURL     string
	QueueWorkers int

	// LLM providers. Each credential is independently optional: a missing
	// key disables the live provider and the deterministic fallback runs.
	ChallengeProvider string // claude, openai
	ChallengeAPIKey   string
	ChallengeModel    string
	ReviewProvider    string
	ReviewAPIKey      string
	ReviewModel       string

	// Auth
	SessionMaxAge int // seconds
}

// Load reads configuration from the environment, then applies an optional
// YAML overlay named by MENTOR_CONFIG.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvInt("PORT", 8080),
		Bind:              getEnv("BIND", "0.0.0.0"),
		Debug:             getEnvBool("DEBUG", false),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		DBPath:            getEnv("DB_PATH", "mentor.db"),
		QueueURL:          getEnv("RABBITMQ_URL", ""),
		QueueWorkers:      getEnvInt("QUEUE_WORKERS", 3),
		ChallengeProvider: getEnv("CHALLENGE_PROVIDER", "claude"),
		ChallengeAPIKey:   getEnv("CHALLENGE_API_KEY", ""),
		ChallengeModel:    getEnv("CHALLENGE_MODEL", ""),
		ReviewProvider:    getEnv("REVIEW_PROVIDER", "claude"),
		ReviewAPIKey:      getEnv("REVIEW_API_KEY", ""),
		ReviewModel:       getEnv("REVIEW_MODEL", ""),
		SessionMaxAge:     getEnvInt("SESSION_MAX_AGE", 86400*7), // 7 days
	}

	if path := os.Getenv("MENTOR_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if cfg.QueueWorkers <= 0 {
		cfg.QueueWorkers = 3
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
