package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
	"github.com/joseph-ayodele/pdfsheets/internal/ingest"
	"github.com/joseph-ayodele/pdfsheets/internal/pipeline"
)

type Processor interface {
	Process(ctx context.Context, templateID string, docs []pipeline.Document) (pipeline.Result, error)
}

// ProcessorQueue runs each job as its own single-document request on a fixed
// set of workers.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  func(Job, pipeline.Result, error)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHook is called from the worker after every job.
func WithResultHook(fn func(Job, pipeline.Result, error)) Option {
	return func(q *ProcessorQueue) { q.onDone = fn }
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("async.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("async.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithRequestID(ctx, job.TraceID)
	log := common.LoggerFromContext(ctx, q.logger).With("worker_id", workerID, "path", job.Path)

	var res pipeline.Result
	docs, err := ingest.ReadDocuments([]string{job.Path})
	if err == nil {
		res, err = q.proc.Process(ctx, job.TemplateID, docs)
	}
	if err != nil {
		log.Error("async.job.failed", "template_id", job.TemplateID, "error", err)
	} else {
		log.Info("async.job.ok",
			"filename", res.Artifact.Filename,
			"rows", len(res.Rows),
			"waited_ms", time.Since(job.SubmittedAt).Milliseconds(),
		)
	}
	if q.onDone != nil {
		q.onDone(job, res, err)
	}
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.New().String()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("async.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("async.enqueue.ok", "path", job.Path, "template_id", job.TemplateID)
		return nil
	default:
	}
	q.logger.Warn("async.enqueue.backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to drain, or for ctx.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.shutdown.interrupted")
	case <-done:
		q.logger.Info("async.shutdown.drained")
	}
}
