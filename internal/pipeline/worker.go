package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/md2docx/internal/convert"
	"github.com/dgallion1/md2docx/internal/metrics"
)

// Converter is the conversion a worker runs for each job.
type Converter interface {
	Convert(ctx context.Context, req convert.Request) (*convert.Output, error)
}

var stageStatus = map[convert.Stage]JobStatus{
	convert.StageRendering:       StatusRendering,
	convert.StageTranslating:     StatusTranslating,
	convert.StageResolvingImages: StatusResolvingImages,
	convert.StagePacking:         StatusPacking,
}

// Worker processes a single conversion job.
type Worker struct {
	conv    Converter
	metrics *metrics.Collectors
	log     *slog.Logger
}

func NewWorker(conv Converter, collectors *metrics.Collectors, log *slog.Logger) *Worker {
	return &Worker{conv: conv, metrics: collectors, log: log}
}

// Process converts the job's Markdown and records the outcome on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	out, err := w.conv.Convert(ctx, convert.Request{
		Markdown: job.Markdown(),
		Options:  job.Options,
		OnStage: func(s convert.Stage) {
			job.SetStatus(stageStatus[s], string(s))
		},
	})
	if err != nil {
		log.Error("conversion job failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Snapshot().Phase)
		w.count(StatusFailed)
		return
	}

	for _, d := range out.Degradations {
		job.AddError("degraded " + d.Kind.String() + ": " + d.Reason)
	}
	job.Complete(out)
	w.count(StatusCompleted)
	log.Info("conversion job complete",
		"elements", out.Elements,
		"pending_images", len(out.PendingImages),
		"bytes", len(out.Document),
	)
}

func (w *Worker) count(status JobStatus) {
	if w.metrics != nil {
		w.metrics.Jobs.WithLabelValues(string(status)).Inc()
	}
}
