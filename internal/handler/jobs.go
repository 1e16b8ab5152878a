package handler

import (
	"sync"
	"time"

	"github.com/devdiary/devdiary/internal/domain"
)

// JobStatus represents the current state of an asynchronous scan job.
type JobStatus struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"` // running, complete, error
	Phase       string    `json:"phase"`
	Progress    int       `json:"progress"`
	Total       int       `json:"total"`
	CurrentRepo string    `json:"current_repo,omitempty"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	ResultID    string    `json:"result_id,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// JobTracker manages scan jobs in memory.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*JobStatus
	subs map[string][]chan JobStatus // subscribers per job
}

// NewJobTracker creates a new job tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{
		jobs: make(map[string]*JobStatus),
		subs: make(map[string][]chan JobStatus),
	}
}

// CreateJob creates a new running job entry.
func (t *JobTracker) CreateJob(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[id] = &JobStatus{
		ID:        id,
		Status:    "running",
		StartedAt: time.Now(),
	}
}

// UpdateProgress records a scan progress event against a job and notifies
// subscribers.
func (t *JobTracker) UpdateProgress(id string, p domain.ScanProgress) {
	t.mu.Lock()
	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	job.Phase = p.Phase
	job.Progress = p.CurrentRepo
	job.Total = p.TotalRepos
	job.CurrentRepo = p.CurrentRepoName
	job.Message = p.Message
	snapshot := *job
	subs := t.subs[id]
	t.mu.Unlock()

	t.notify(subs, snapshot)
}

// FinishJob marks a job complete or failed and notifies subscribers.
func (t *JobTracker) FinishJob(id, resultID, errMsg string) {
	t.mu.Lock()
	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	job.CompletedAt = time.Now()
	job.ResultID = resultID
	if errMsg != "" {
		job.Status = "error"
		job.Error = errMsg
	} else {
		job.Status = "complete"
		job.Phase = domain.PhaseComplete
	}
	snapshot := *job
	subs := t.subs[id]
	t.mu.Unlock()

	t.notify(subs, snapshot)
}

func (t *JobTracker) notify(subs []chan JobStatus, snapshot JobStatus) {
	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// GetJob returns a snapshot of a job status.
func (t *JobTracker) GetJob(id string) (*JobStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// Subscribe returns a channel that receives job updates.
func (t *JobTracker) Subscribe(id string) chan JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan JobStatus, 10)
	t.subs[id] = append(t.subs[id], ch)
	return ch
}

// Unsubscribe removes a channel from subscribers.
func (t *JobTracker) Unsubscribe(id string, ch chan JobStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := t.subs[id]
	for i, s := range subs {
		if s == ch {
			t.subs[id] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(ch)
}
