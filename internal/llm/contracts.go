package llm

import "context"

// Completer sends a prompt to a hosted model and returns the raw reply text.
// Implementations own their transport, credentials and retry policy.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
