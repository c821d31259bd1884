package async

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/pdfsheets/internal/pipeline"
)

type recordingProcessor struct {
	mu    sync.Mutex
	names []string
}

func (p *recordingProcessor) Process(_ context.Context, templateID string, docs []pipeline.Document) (pipeline.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range docs {
		p.names = append(p.names, templateID+"/"+d.Name)
	}
	return pipeline.Result{}, nil
}

func TestQueueProcessesJobs(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, n := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("%PDF"), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "gone.pdf"))

	var (
		mu     sync.Mutex
		failed []string
	)
	proc := &recordingProcessor{}
	q := NewProcessorQueue(proc, nil, WithWorkers(2), WithQueueSize(1), WithResultHook(func(j Job, _ pipeline.Result, err error) {
		if err != nil {
			mu.Lock()
			failed = append(failed, filepath.Base(j.Path))
			mu.Unlock()
		}
	}))
	for _, p := range paths {
		if err := q.Enqueue(context.Background(), Job{TemplateID: "funds", Path: p}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if len(proc.names) != 3 {
		t.Errorf("processed = %v", proc.names)
	}
	if len(failed) != 1 || failed[0] != "gone.pdf" {
		t.Errorf("failed = %v", failed)
	}
	if err := q.Enqueue(context.Background(), Job{Path: paths[0]}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Enqueue after shutdown err = %v", err)
	}
	q.Shutdown(ctx)
}
