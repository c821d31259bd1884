package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/llm"
)

// ErrMissingAPIKey is returned without any network call when no key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY not set")

func (c *Client) Name() string { return "openai" }

// Complete implements llm.Completer over the chat/completions endpoint. Every
// failure of the call itself is retried with a fixed delay; the reply content is
// returned as-is for the caller to judge.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	log := common.LoggerFromContext(ctx, c.logger)
	if c.cfg.APIKey == "" {
		log.Warn("llm.openai.no_api_key")
		return "", ErrMissingAPIKey
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": prompt},
		},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	start := time.Now()
	content, err := retry.DoWithData(
		func() (string, error) {
			raw, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
			if err != nil {
				return "", err
			}
			return decodeContent(raw)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.RetryAttempts)),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("llm.openai.retry", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		log.Error("llm.openai.failed",
			"model", c.cfg.Model,
			"attempts", c.cfg.RetryAttempts,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	log.Info("llm.openai.ok",
		"model", c.cfg.Model,
		"reply_chars", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func decodeContent(raw []byte) (string, error) {
	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}
