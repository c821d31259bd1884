// Package gemini adapts the Gemini generate-content API to llm.Completer.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
)

type Config struct {
	APIKey  string
	Model   string        // default gemini-2.0-flash
	BaseURL string        // optional endpoint override
	Timeout time.Duration // default 60s
}

// generator is the slice of genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	cfg    Config
	models generator
	logger *slog.Logger
}

// NewClient builds a client for the Gemini API backend. No request is made.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}
	cfg = withDefaults(cfg)
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newWithGenerator(cfg, gc.Models, logger), nil
}

func newWithGenerator(cfg Config, g generator, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: withDefaults(cfg), models: g, logger: logger}
}

func withDefaults(cfg Config) Config {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return cfg
}

func (c *Client) Name() string { return "gemini" }

// Complete sends prompt as a single user turn. There is no retry here.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	log := common.LoggerFromContext(ctx, c.logger)
	start := time.Now()

	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		log.Error("llm.gemini.failed", "model", c.cfg.Model, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		text = "{}"
	}
	log.Info("llm.gemini.ok", "model", c.cfg.Model, "reply_chars", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}
