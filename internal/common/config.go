package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Templates TemplatesConfig
	Text      TextConfig
	LLM       LLMConfig
	Gemini    GeminiConfig
	Store     StoreConfig
	LogLevel  slog.Level
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// TemplatesConfig holds the template search path.
type TemplatesConfig struct {
	Dir         string
	ExternalDir string
}

// TextConfig holds PDF text extraction configuration
type TextConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	EnableOCR     bool
}

// LLMConfig holds configuration for the primary chat-completions provider
type LLMConfig struct {
	Mock          bool
	Model         string
	APIKey        string
	BaseURL       string
	Temperature   float32
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// GeminiConfig holds configuration for the secondary provider
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// StoreConfig holds artifact storage configuration
type StoreConfig struct {
	DSN       string
	OutputDir string
	Retention time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Templates: TemplatesConfig{
			Dir:         getEnv("TEMPLATES_DIR", "./templates"),
			ExternalDir: getEnv("EXTERNAL_TEMPLATE_DIR", ""),
		},
		Text: TextConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			EnableOCR:     getEnvAsBool("ENABLE_OCR", false),
		},
		LLM: LLMConfig{
			Mock:          getEnvAsBool("MOCK_LLM", false),
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
			RetryAttempts: getEnvAsInt("LLM_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvAsDuration("LLM_RETRY_DELAY", time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Store: StoreConfig{
			DSN:       getEnv("STORE_DSN", "memory"),
			OutputDir: getEnv("OUTPUT_DIR", ""),
			Retention: getEnvAsDuration("ARTIFACT_RETENTION", time.Hour),
		},
		LogLevel: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(value)); err == nil {
			return lvl
		}
	}
	return defaultValue
}

// TemplateDirs returns the configured template directories in search order.
func (c *Config) TemplateDirs() []string {
	dirs := []string{c.Templates.Dir}
	if c.Templates.ExternalDir != "" {
		dirs = append(dirs, c.Templates.ExternalDir)
	}
	return dirs
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Templates.Dir == "" && c.Templates.ExternalDir == "" {
		return NewAppError("CONFIG_ERROR", "TEMPLATES_DIR or EXTERNAL_TEMPLATE_DIR is required", ErrInvalidInput)
	}
	if c.LLM.RetryAttempts < 1 {
		return NewAppError("CONFIG_ERROR", "LLM_RETRY_ATTEMPTS must be at least 1", ErrInvalidInput)
	}
	if c.Store.Retention <= 0 {
		return NewAppError("CONFIG_ERROR", "ARTIFACT_RETENTION must be positive", ErrInvalidInput)
	}
	return nil
}
