package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/domain"
	"github.com/imageopt/imageopt/internal/filter"
	"github.com/imageopt/imageopt/internal/job"
	"github.com/imageopt/imageopt/internal/scanner"
)

// BatchUsecase is the single entry point for both the HTTP layer and the
// CLI, keeping the scan/filter/resize pipeline testable without either.
type BatchUsecase struct {
	manager *job.Manager
}

func NewBatchUsecase(manager *job.Manager) *BatchUsecase {
	return &BatchUsecase{manager: manager}
}

// StartScan validates the directory and launches a background scan job.
func (u *BatchUsecase) StartScan(dir string, recursive bool) (domain.JobSnapshot, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return domain.JobSnapshot{}, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return domain.JobSnapshot{}, fmt.Errorf("%w: %s", domain.ErrNotADirectory, dir)
	}

	j := u.manager.StartScan(dir, recursive)
	return j.Snapshot(), nil
}

// StartBatch applies the filter chain over the selection and launches the
// background process job. An empty filtered selection is rejected before
// any job starts.
func (u *BatchUsecase) StartBatch(ctx context.Context, files []string, criteria filter.Criteria, rspec domain.ResizeSpec, ospec domain.OutputSpec) (domain.JobSnapshot, error) {
	if err := rspec.Validate(); err != nil {
		return domain.JobSnapshot{}, err
	}
	if err := ospec.Validate(); err != nil {
		return domain.JobSnapshot{}, err
	}

	// Non-image paths are dropped up front, before any filtering.
	candidates := make([]string, 0, len(files))
	for _, f := range files {
		if scanner.IsImagePath(f) {
			candidates = append(candidates, f)
		}
	}

	filtered, err := filter.Apply(ctx, candidates, criteria, scanner.Probe)
	if err != nil {
		return domain.JobSnapshot{}, fmt.Errorf("apply filters: %w", err)
	}
	if len(filtered) == 0 {
		return domain.JobSnapshot{}, domain.ErrNoFiles
	}

	zlog.Logger.Info().
		Int("selected", len(files)).
		Int("filtered", len(filtered)).
		Msg("selection filtered")

	j, err := u.manager.StartProcess(filtered, rspec, ospec)
	if err != nil {
		return domain.JobSnapshot{}, err
	}
	return j.Snapshot(), nil
}

// Snapshot returns the current state of a job by ID.
func (u *BatchUsecase) Snapshot(id string) (domain.JobSnapshot, error) {
	j, err := u.manager.Get(id)
	if err != nil {
		return domain.JobSnapshot{}, err
	}
	return j.Snapshot(), nil
}

// Cancel requests cancellation of a running job.
func (u *BatchUsecase) Cancel(id string) error {
	j, err := u.manager.Get(id)
	if err != nil {
		return err
	}
	j.Cancel()
	return nil
}

// Wait blocks until the job finishes. Used by the CLI.
func (u *BatchUsecase) Wait(ctx context.Context, id string) (domain.JobSnapshot, error) {
	j, err := u.manager.Get(id)
	if err != nil {
		return domain.JobSnapshot{}, err
	}
	for {
		if j.Wait(200 * time.Millisecond) {
			return j.Snapshot(), nil
		}
		if err := ctx.Err(); err != nil {
			j.Cancel()
			return j.Snapshot(), err
		}
	}
}

// FileInfo probes a single file for the preview cards.
func (u *BatchUsecase) FileInfo(path string) (domain.FileInfo, error) {
	return scanner.Probe(path)
}
