package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func reply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(reply(` {"fund_name": "Alpha"} `)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", RetryDelay: time.Millisecond}, nil)
	out, err := c.Complete(context.Background(), "extract please")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"fund_name": "Alpha"}` {
		t.Errorf("content = %q", out)
	}
	if got.Model != "gpt-4o-mini" || got.Temperature != 0 {
		t.Errorf("model=%q temperature=%v", got.Model, got.Temperature)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[0].Content != "You output strict JSON only." ||
		got.Messages[1].Role != "user" || got.Messages[1].Content != "extract please" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestCompleteRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, RetryDelay: time.Millisecond}, nil)
	if _, err := c.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestCompleteRecoversOnRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		_, _ = w.Write([]byte(reply(`{}`)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, RetryDelay: time.Millisecond}, nil)
	out, err := c.Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "{}" || calls.Load() != 2 {
		t.Errorf("out=%q calls=%d", out, calls.Load())
	}
}

func TestCompleteWithoutKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), "p")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
	if calls.Load() != 0 {
		t.Error("no request should be sent without a key")
	}
}
