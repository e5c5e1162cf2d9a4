package job

import (
	"context"
	"fmt"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/domain"
	"github.com/imageopt/imageopt/internal/infrastructure/processor"
	"github.com/imageopt/imageopt/internal/infrastructure/storage"
	"github.com/imageopt/imageopt/internal/scanner"

	"sync"
)

// Manager owns the two background workers. At most one scan and one process
// job run at a time; starting a new scan cancels the previous one, while a
// second process job is refused until the current one finishes.
type Manager struct {
	scanner   *scanner.Scanner
	processor *processor.Processor
	uploads   storage.Storage // nil when publication is disabled

	logLimit   int
	cancelWait time.Duration

	// scanStart serializes StartScan calls so concurrent requests cannot
	// both observe the same previous scan and install two new ones.
	scanStart sync.Mutex

	mu      sync.Mutex
	scan    *Job
	process *Job
	jobs    map[string]*Job
}

func NewManager(sc *scanner.Scanner, proc *processor.Processor, uploads storage.Storage, logLimit int, cancelWait time.Duration) *Manager {
	if logLimit <= 0 {
		logLimit = 2000
	}
	if cancelWait <= 0 {
		cancelWait = time.Second
	}
	return &Manager{
		scanner:    sc,
		processor:  proc,
		uploads:    uploads,
		logLimit:   logLimit,
		cancelWait: cancelWait,
		jobs:       make(map[string]*Job),
	}
}

// StartScan launches a directory scan. A still-running previous scan is
// cancelled and briefly waited for before the new one starts.
func (m *Manager) StartScan(dir string, recursive bool) *Job {
	m.scanStart.Lock()
	defer m.scanStart.Unlock()

	m.mu.Lock()
	prev := m.scan
	m.mu.Unlock()

	if prev != nil && !prev.Status().Terminal() {
		prev.Cancel()
		if !prev.Wait(m.cancelWait) {
			zlog.Logger.Warn().Str("job_id", prev.ID).Msg("previous scan did not stop in time")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := newJob(domain.JobScan, m.logLimit, cancel)

	m.mu.Lock()
	m.scan = j
	m.jobs[j.ID] = j
	m.mu.Unlock()

	zlog.Logger.Info().
		Str("job_id", j.ID).
		Str("dir", dir).
		Bool("recursive", recursive).
		Msg("scan started")

	go m.runScan(ctx, j, dir, recursive)
	return j
}

func (m *Manager) runScan(ctx context.Context, j *Job, dir string, recursive bool) {
	j.markRunning()
	j.appendLog(fmt.Sprintf("scanning %s (recursive=%v)...", dir, recursive))

	files, err := m.scanner.Scan(ctx, dir, recursive, func(found int) {
		j.appendLog(fmt.Sprintf("scanned %d image files...", found))
		j.setProgress(found, 0)
	})
	if err != nil {
		if ctx.Err() != nil {
			j.appendLog("scan cancelled")
			j.finish(domain.StatusCancelled, nil)
			return
		}
		j.appendLog(fmt.Sprintf("scan error: %v", err))
		zlog.Logger.Error().Err(err).Str("dir", dir).Msg("scan failed")
		j.finish(domain.StatusFailed, err)
		return
	}

	infos := make([]domain.FileInfo, 0, len(files))
	for _, f := range files {
		if ctx.Err() != nil {
			j.appendLog("scan cancelled")
			j.finish(domain.StatusCancelled, nil)
			return
		}
		fi, err := scanner.Probe(f)
		if err != nil {
			// Still listed; the preview shows it without dimensions.
			zlog.Logger.Warn().Err(err).Str("path", f).Msg("probe failed during scan")
		}
		infos = append(infos, fi)
	}

	j.setFiles(infos)
	j.setProgress(len(infos), len(infos))
	j.appendLog(fmt.Sprintf("scan finished, found %d image files", len(infos)))
	j.finish(domain.StatusCompleted, nil)
}

// StartProcess launches a batch over the given files, which the caller has
// already filtered. Only one process job may run at a time.
func (m *Manager) StartProcess(files []string, rspec domain.ResizeSpec, ospec domain.OutputSpec) (*Job, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}

	m.mu.Lock()
	if m.process != nil && !m.process.Status().Terminal() {
		m.mu.Unlock()
		return nil, domain.ErrJobRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	j := newJob(domain.JobProcess, m.logLimit, cancel)
	m.process = j
	m.jobs[j.ID] = j
	m.mu.Unlock()

	zlog.Logger.Info().
		Str("job_id", j.ID).
		Int("files", len(files)).
		Str("mode", string(rspec.Mode)).
		Str("format", string(ospec.Format)).
		Str("policy", string(ospec.Policy)).
		Msg("batch started")

	go m.runBatch(ctx, j, files, rspec, ospec)
	return j, nil
}

// Get returns a job by ID, scan or process, running or finished.
func (m *Manager) Get(id string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return j, nil
}

// CancelAll stops whatever is running. Used on shutdown.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	scan, process := m.scan, m.process
	m.mu.Unlock()

	for _, j := range []*Job{scan, process} {
		if j != nil && !j.Status().Terminal() {
			j.Cancel()
			j.Wait(m.cancelWait)
		}
	}
}
