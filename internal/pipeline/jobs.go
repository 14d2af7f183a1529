package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/md2docx/internal/convert"
	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/style"
	"github.com/dgallion1/md2docx/internal/translate"
	"github.com/google/uuid"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued          JobStatus = "queued"
	StatusRendering       JobStatus = "rendering"
	StatusTranslating     JobStatus = "translating"
	StatusResolvingImages JobStatus = "resolving_images"
	StatusPacking         JobStatus = "packing"
	StatusCompleted       JobStatus = "completed"
	StatusFailed          JobStatus = "failed"
)

// Job tracks the state of a single asynchronous conversion.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Options style.Options `json:"style_options"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	markdown string
	output   *convert.Output
	errors   []string
}

// NewJob creates a queued job for markdown. filename names the produced
// document and may be empty.
func NewJob(markdown, filename string, opts style.Options) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Options:     opts,
		ContentHash: convert.ContentHashHex([]byte(markdown)),
		CreatedAt:   now,
		UpdatedAt:   now,
		markdown:    markdown,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// Complete stores the conversion output and marks the job completed.
func (j *Job) Complete(out *convert.Output) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.output = out
	j.markdown = ""
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Markdown returns the source text.
func (j *Job) Markdown() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.markdown
}

// Document returns the produced DOCX and its hash once the job completed.
func (j *Job) Document() ([]byte, string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted || j.output == nil {
		return nil, "", false
	}
	return j.output.Document, j.output.Hash, true
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// Result summarises a finished conversion.
type Result struct {
	DocumentBytes int                     `json:"document_bytes"`
	DocumentHash  string                  `json:"document_hash"`
	Elements      int                     `json:"elements"`
	PendingImages []doctree.PendingImage  `json:"pending_images"`
	Degradations  []translate.Degradation `json:"degradations"`
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string        `json:"job_id"`
	Status      JobStatus     `json:"status"`
	Phase       string        `json:"phase"`
	Filename    string        `json:"filename"`
	Options     style.Options `json:"style_options"`
	ContentHash string        `json:"content_hash,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Errors      []string      `json:"errors"`
	Result      *Result       `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)

	snap := JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Options:     j.Options,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Errors:      errs,
	}
	if out := j.output; out != nil {
		snap.Result = &Result{
			DocumentBytes: len(out.Document),
			DocumentHash:  out.Hash,
			Elements:      out.Elements,
			PendingImages: nonNil(out.PendingImages),
			Degradations:  nonNil(out.Degradations),
		}
	}
	return snap
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
