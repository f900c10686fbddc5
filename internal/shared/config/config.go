package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port                  string
	Env                   string
	BotToken              string
	WebhookBaseURL        string
	SheetID               string
	SheetName             string
	GoogleCredentialsJSON string
	AdminChatID           int64
	MediaIdleWindow       time.Duration
	RequireMediaOnFailure bool
	FailureKeywords       []string
	AppendWorkers         int
	AppendQueueSize       int
	ShutdownTimeout       time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   normalizeEnv(getEnv("ENV", "dev")),
		BotToken:              os.Getenv("BOT_TOKEN"),
		WebhookBaseURL:        strings.TrimRight(os.Getenv("WEBHOOK_BASE_URL"), "/"),
		SheetID:               os.Getenv("SHEET_ID"),
		SheetName:             getEnv("SHEET_NAME", "Sheet1"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		AdminChatID:           getEnvInt64("ADMIN_CHAT_ID", 0),
		MediaIdleWindow:       time.Duration(getEnvInt("MEDIA_IDLE_SECONDS", 4)) * time.Second,
		RequireMediaOnFailure: getEnvBool("REQUIRE_MEDIA_ON_FAILURE", true),
		FailureKeywords:       splitAndTrim(getEnv("FAILURE_KEYWORDS", "breakdown,broken,failure")),
		AppendWorkers:         getEnvInt("APPEND_WORKERS", 2),
		AppendQueueSize:       getEnvInt("APPEND_QUEUE_SIZE", 16),
		ShutdownTimeout:       time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

// Validate reports the first missing required setting. Startup treats any
// error as fatal rather than running degraded.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if strings.TrimSpace(c.WebhookBaseURL) == "" {
		return fmt.Errorf("WEBHOOK_BASE_URL is required")
	}
	if strings.TrimSpace(c.SheetID) == "" {
		return fmt.Errorf("SHEET_ID is required")
	}
	if c.AppendWorkers < 1 {
		return fmt.Errorf("APPEND_WORKERS must be at least 1")
	}
	if c.AppendQueueSize < 1 {
		return fmt.Errorf("APPEND_QUEUE_SIZE must be at least 1")
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
