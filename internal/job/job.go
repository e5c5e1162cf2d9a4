package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imageopt/imageopt/internal/domain"
)

// Job is one background run, either a directory scan or a batch process.
// All mutation happens on the goroutine running the job; readers take
// snapshots under the mutex.
type Job struct {
	ID   string
	Kind domain.JobKind

	mu         sync.Mutex
	status     domain.JobStatus
	current    int
	total      int
	log        []string
	logLimit   int
	report     *domain.Report
	files      []domain.FileInfo
	err        error
	startedAt  time.Time
	finishedAt *time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func newJob(kind domain.JobKind, logLimit int, cancel context.CancelFunc) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		status:    domain.StatusPending,
		logLimit:  logLimit,
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Cancel requests cooperative cancellation. The job keeps running until it
// observes the context between files.
func (j *Job) Cancel() {
	j.cancel()
}

// Wait blocks until the job finishes or the timeout elapses, reporting
// whether it finished.
func (j *Job) Wait(timeout time.Duration) bool {
	select {
	case <-j.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// markRunning is called by the worker goroutine once it picks the job up;
// snapshots taken before that report the pending status.
func (j *Job) markRunning() {
	j.mu.Lock()
	j.status = domain.StatusRunning
	j.mu.Unlock()
}

func (j *Job) Status() domain.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) appendLog(line string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.log) >= j.logLimit {
		// Drop the oldest quarter so appends stay amortized O(1).
		j.log = append(j.log[:0], j.log[j.logLimit/4:]...)
	}
	j.log = append(j.log, line)
}

func (j *Job) setProgress(current, total int) {
	j.mu.Lock()
	j.current = current
	j.total = total
	j.mu.Unlock()
}

func (j *Job) finish(status domain.JobStatus, err error) {
	j.mu.Lock()
	j.status = status
	j.err = err
	now := time.Now()
	j.finishedAt = &now
	j.mu.Unlock()
	close(j.done)
}

func (j *Job) setReport(r domain.Report) {
	j.mu.Lock()
	j.report = &r
	j.mu.Unlock()
}

func (j *Job) setFiles(files []domain.FileInfo) {
	j.mu.Lock()
	j.files = files
	j.mu.Unlock()
}

// Snapshot returns a copy safe to serialize while the job keeps running.
func (j *Job) Snapshot() domain.JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	snap := domain.JobSnapshot{
		ID:         j.ID,
		Kind:       j.Kind,
		Status:     j.status,
		Current:    j.current,
		Total:      j.total,
		Log:        append([]string(nil), j.log...),
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
	}
	if j.report != nil {
		r := *j.report
		snap.Report = &r
	}
	if j.files != nil {
		snap.Files = append([]domain.FileInfo(nil), j.files...)
	}
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	return snap
}
