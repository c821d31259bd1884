package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

type fakeModels struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: s}}},
		}},
	}
}

func TestComplete(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"fund_name":"Alpha"}`)}
	c := newWithGenerator(Config{APIKey: "k"}, fake, nil)

	out, err := c.Complete(context.Background(), "extract")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"fund_name":"Alpha"}` {
		t.Errorf("out = %q", out)
	}
	if fake.model != "gemini-2.0-flash" || fake.prompt != "extract" {
		t.Errorf("model=%q prompt=%q", fake.model, fake.prompt)
	}
	if fake.config == nil || fake.config.Temperature == nil || *fake.config.Temperature != 0 {
		t.Error("temperature should be pinned to zero")
	}
}

func TestCompleteEmptyReply(t *testing.T) {
	c := newWithGenerator(Config{}, &fakeModels{resp: &genai.GenerateContentResponse{}}, nil)
	out, err := c.Complete(context.Background(), "p")
	if err != nil || out != "{}" {
		t.Errorf("out=%q err=%v", out, err)
	}
}

func TestCompleteError(t *testing.T) {
	c := newWithGenerator(Config{}, &fakeModels{err: errors.New("quota")}, nil)
	if _, err := c.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error without api key")
	}
}
