package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
)

// StatusError reports a non-2xx response from a provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status: %d: %s", e.StatusCode, e.Body)
}

// SendJSON posts body as JSON to url with the given headers and returns the raw
// response body. It is provider-agnostic: callers choose the URL and auth headers.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	logger = common.LoggerFromContext(ctx, logger)
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("llm.http.request", "url", url, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("llm.http.send_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("llm.http.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	logger.Info("llm.http.response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return raw, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
