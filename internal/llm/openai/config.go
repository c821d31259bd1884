package openai

import (
	"log/slog"
	"net/http"
	"time"
)

// Config for the chat-completions client.
type Config struct {
	APIKey        string
	BaseURL       string        // default https://api.openai.com/v1
	Model         string        // default gpt-4o-mini
	Temperature   float32       // 0 keeps replies deterministic
	Timeout       time.Duration // per-attempt http timeout, default 60s
	RetryAttempts int           // default 3
	RetryDelay    time.Duration // fixed delay between attempts, default 1s
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
