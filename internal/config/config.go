package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"invagro-dashboard/internal/history"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Frontend
	FrontendURL  string
	ChatEndpoint string

	// History
	HistoryBackend    string
	HistoryDir        string
	HistoryKey        string
	HistoryLimit      int
	HistoryScope      string
	HistoryQuotaBytes int

	// Redis
	RedisURL string

	// Database
	DatabaseURL string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// Rate limit for POST /api/chat
	ChatRateLimitPerMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	port := getEnvOrDefault("PORT", "8080")

	cfg := &Config{
		Port:                 port,
		Env:                  getEnvOrDefault("ENV", "development"),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:"+port),
		ChatEndpoint:         getEnvOrDefault("CHAT_ENDPOINT", "http://localhost:"+port+"/api/chat"),
		HistoryBackend:       strings.ToLower(getEnvOrDefault("HISTORY_BACKEND", BackendFile)),
		HistoryDir:           getEnvOrDefault("HISTORY_DIR", "./data/history"),
		HistoryKey:           getEnvOrDefault("HISTORY_KEY", "invagro_chat_history"),
		HistoryLimit:         getEnvAsIntOrDefault("HISTORY_LIMIT", history.DefaultLimit),
		HistoryScope:         getEnvOrDefault("HISTORY_SCOPE", ""),
		HistoryQuotaBytes:    getEnvAsIntOrDefault("HISTORY_QUOTA_BYTES", 5*1024*1024),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", ""),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		ChatRateLimitPerMin:  getEnvAsIntOrDefault("CHAT_RATE_LIMIT_PER_MIN", 30),
	}

	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.HistoryBackend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("HISTORY_BACKEND=redis requires REDIS_URL")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("HISTORY_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.HistoryBackend)
	}

	if c.HistoryLimit <= 0 || c.HistoryLimit > history.DefaultLimit {
		return fmt.Errorf("HISTORY_LIMIT must be between 1 and %d, got %d", history.DefaultLimit, c.HistoryLimit)
	}
	if c.ChatEndpoint == "" {
		return fmt.Errorf("CHAT_ENDPOINT is empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
