package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Telegram TelegramConfig
	LLM      LLMConfig
	OCR      OCRConfig
	Collate  CollateConfig
	Ingest   IngestConfig
	Archive  ArchiveConfig
	Server   ServerConfig
}

// TelegramConfig holds Bot API configuration
type TelegramConfig struct {
	BotToken    string
	BaseURL     string
	PollTimeout time.Duration
}

// LLMConfig holds extraction backend configuration
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OCRConfig holds recognition configuration
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	PSM           int
	OEM           int
}

// CollateConfig holds album collation configuration
type CollateConfig struct {
	DebounceWindow time.Duration
}

// IngestConfig holds the optional drop-folder ingress configuration
type IngestConfig struct {
	DropDir  string
	Debounce time.Duration
}

// ArchiveConfig holds the optional extracted-record archive configuration
type ArchiveConfig struct {
	DSN string
}

// ServerConfig holds the health endpoint configuration
type ServerConfig struct {
	GRPCAddr string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			BaseURL:     getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
			PollTimeout: getEnvAsDuration("TELEGRAM_POLL_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			APIKey:  getEnv("GROQ_API_KEY", ""),
			BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
			Timeout: getEnvAsDuration("GROQ_TIMEOUT", 45*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("TESSERACT_PSM", 0),
			OEM:           getEnvAsInt("TESSERACT_OEM", 0),
		},
		Collate: CollateConfig{
			DebounceWindow: getEnvAsDuration("HRX_ALBUM_DEBOUNCE", 1500*time.Millisecond),
		},
		Ingest: IngestConfig{
			DropDir:  getEnv("HRX_DROP_DIR", ""),
			Debounce: getEnvAsDuration("HRX_DROP_DEBOUNCE", 200*time.Millisecond),
		},
		Archive: ArchiveConfig{
			DSN: getEnv("HRX_ARCHIVE_DSN", ""),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return NewAppError("CONFIG_ERROR", "TELEGRAM_BOT_TOKEN is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GROQ_API_KEY is required", ErrInvalidInput)
	}
	if c.Collate.DebounceWindow <= 0 {
		return NewAppError("CONFIG_ERROR", "HRX_ALBUM_DEBOUNCE must be positive", ErrInvalidInput)
	}
	return nil
}
