package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/md2docx/internal/config"
	"github.com/dgallion1/md2docx/internal/convert"
	"github.com/dgallion1/md2docx/internal/style"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubConverter struct {
	release chan struct{}
	err     error
}

func (s *stubConverter) Convert(ctx context.Context, req convert.Request) (*convert.Output, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	for _, st := range []convert.Stage{convert.StageRendering, convert.StageTranslating, convert.StagePacking} {
		req.OnStage(st)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &convert.Output{Document: []byte(req.Markdown), Hash: "h", Elements: 1}, nil
}

func waitFor(t *testing.T, job *Job, want JobStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if job.Snapshot().Status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach %q, last status %q", job.ID, want, job.Snapshot().Status)
}

func TestOrchestratorCompletesJob(t *testing.T) {
	o := NewOrchestrator(config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}, &stubConverter{}, nil, quiet)
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("hello", "a.md", style.Default())
	if err := o.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, job, StatusCompleted)

	if o.GetJob(job.ID) != job {
		t.Error("expected job to be retrievable")
	}
	doc, _, ok := job.Document()
	if !ok || string(doc) != "hello" {
		t.Errorf("unexpected document %q ok=%v", doc, ok)
	}
}

func TestOrchestratorRecordsFailure(t *testing.T) {
	o := NewOrchestrator(config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}, &stubConverter{err: convert.ErrPack}, nil, quiet)
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("hello", "", style.Default())
	if err := o.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, job, StatusFailed)

	snap := job.Snapshot()
	if snap.Phase != string(convert.StagePacking) {
		t.Errorf("expected failure in packing phase, got %q", snap.Phase)
	}
	if len(snap.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", snap.Errors)
	}
}

func TestOrchestratorRejectsWhenQueueFull(t *testing.T) {
	release := make(chan struct{})
	o := NewOrchestrator(config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}, &stubConverter{release: release}, nil, quiet)
	o.Start(context.Background())
	defer o.Stop()
	defer close(release)

	busy := NewJob("busy", "", style.Default())
	if err := o.Submit(busy); err != nil {
		t.Fatalf("Submit busy: %v", err)
	}
	// Wait until the worker has taken the first job off the queue.
	deadline := time.Now().Add(2 * time.Second)
	for o.QueueDepth() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := o.Submit(NewJob("waiting", "", style.Default())); err != nil {
		t.Fatalf("Submit waiting: %v", err)
	}
	overflow := NewJob("overflow", "", style.Default())
	err := o.Submit(overflow)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if overflow.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job marked failed, got %q", overflow.Snapshot().Status)
	}
}
