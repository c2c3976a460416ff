package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/finsight/internal/report"
)

// JobStatus represents the state of a document job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusReading     JobStatus = "reading"
	StatusNormalizing JobStatus = "normalizing"
	StatusChunking    JobStatus = "chunking"
	StatusExtracting  JobStatus = "extracting"
	StatusScoring     JobStatus = "scoring"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Job tracks the state of a single document run.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Identity string `json:"document"`
	Company  string `json:"company"`
	Filename string `json:"filename"`
	Force    bool   `json:"force"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
	done     chan struct{}
}

// Progress tracks processing progress.
type Progress struct {
	TotalChunks     int      `json:"total_chunks"`
	ChunksProcessed int      `json:"chunks_processed"`
	CurrentModel    string   `json:"current_model,omitempty"`
	ModelAttempts   int      `json:"model_attempts"`
	Model           string   `json:"model,omitempty"`
	Reused          bool     `json:"reused"`
	Statements      int      `json:"statements"`
	SentimentRows   int      `json:"sentiment_rows"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job for a report file. The document identity and
// company are derived from the filename.
func NewJob(filename string, data []byte, force bool) *Job {
	now := time.Now()
	identity := report.IdentityFromPath(filename)
	return &Job{
		ID:        uuid.New().String(),
		Identity:  identity,
		Company:   report.CompanyFromIdentity(identity),
		Filename:  filename,
		Force:     force,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
		done:      make(chan struct{}),
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

// List returns snapshots of all jobs, oldest first.
func (s *JobStore) List() []JobSnapshot {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	out := make([]JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Snapshot())
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID < out[k].ID
		}
		return out[i].CreatedAt.Before(out[k].CreatedAt)
	})
	return out
}

// Cleanup removes finished jobs older than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically. Reaching a terminal status
// releases the job's file data and wakes Wait callers.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	if status.Terminal() {
		j.fileData = nil
		if j.done != nil {
			select {
			case <-j.done:
			default:
				close(j.done)
			}
		}
	}
}

// Done returns a channel closed when the job reaches a terminal status.
func (j *Job) Done() <-chan struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done == nil {
		j.done = make(chan struct{})
	}
	return j.done
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalChunks records total chunk count.
func (j *Job) SetTotalChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = n
	j.UpdatedAt = time.Now()
}

// ModelStarted resets chunk progress for a new model attempt.
func (j *Job) ModelStarted(model string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.CurrentModel = model
	j.Progress.ModelAttempts++
	j.Progress.ChunksProcessed = 0
	j.UpdatedAt = time.Now()
}

// ChunkDone records a chunk that succeeded under model.
func (j *Job) ChunkDone(model string, index, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksProcessed = index + 1
	j.Progress.TotalChunks = total
	j.UpdatedAt = time.Now()
}

// SetResult records the extraction outcome.
func (j *Job) SetResult(model string, statements int, reused bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Model = model
	j.Progress.Statements = statements
	j.Progress.Reused = reused
	j.UpdatedAt = time.Now()
}

// SetSentimentRows records how many statements were scored.
func (j *Job) SetSentimentRows(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SentimentRows = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Identity  string    `json:"document"`
	Company   string    `json:"company"`
	Filename  string    `json:"filename"`
	Force     bool      `json:"force"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = append([]string{}, j.errors...)
	return JobSnapshot{
		ID:        j.ID,
		Identity:  j.Identity,
		Company:   j.Company,
		Filename:  j.Filename,
		Force:     j.Force,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
