package async

import (
	"context"
	"errors"
	"time"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting to be extracted with a template.
type Job struct {
	TemplateID  string
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
