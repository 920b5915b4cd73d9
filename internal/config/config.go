package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends understood by StoreKind.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

// Config holds the configuration for the application.
type Config struct {
	APIURL      string
	APIToken    string
	JWTSecret   string
	JWTSubject  string
	HTTPTimeout time.Duration
	PageSize    int

	// Persistence
	StoreKind    string
	DatabasePath string
	StoreDir     string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	apiURL := os.Getenv("FITHUB_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("FITHUB_API_URL environment variable not set")
	}

	apiToken := os.Getenv("FITHUB_API_TOKEN")
	jwtSecret := os.Getenv("FITHUB_JWT_SECRET")
	if apiToken == "" && jwtSecret == "" {
		return nil, fmt.Errorf("FITHUB_API_TOKEN or FITHUB_JWT_SECRET environment variable not set")
	}

	pageSize, err := intEnv("FITHUB_PAGE_SIZE", 50)
	if err != nil {
		return nil, err
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("FITHUB_PAGE_SIZE must be positive, got %d", pageSize)
	}

	timeoutSecs, err := intEnv("FITHUB_HTTP_TIMEOUT", 15)
	if err != nil {
		return nil, err
	}

	storeKind := strings.ToLower(getEnv("FITHUB_STORE", StoreSQLite))
	switch storeKind {
	case StoreSQLite, StoreFile, StoreMemory:
	default:
		return nil, fmt.Errorf("FITHUB_STORE must be one of sqlite, file, memory; got %q", storeKind)
	}

	// Telegram Config (Optional for CLI, required for Bot)
	var allowed []int64
	for _, part := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		allowed = append(allowed, id)
	}

	return &Config{
		APIURL:                 apiURL,
		APIToken:               apiToken,
		JWTSecret:              jwtSecret,
		JWTSubject:             getEnv("FITHUB_JWT_SUBJECT", "fithub"),
		HTTPTimeout:            time.Duration(timeoutSecs) * time.Second,
		PageSize:               pageSize,
		StoreKind:              storeKind,
		DatabasePath:           getEnv("FITHUB_DB_PATH", "data/fithub.db"),
		StoreDir:               getEnv("FITHUB_STORE_DIR", "data/store"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
