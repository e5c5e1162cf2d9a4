package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/domain"
)

// runBatch is the sequential pass over the selection. Every per-file error
// is logged and counted; only cancellation stops the loop early.
func (m *Manager) runBatch(ctx context.Context, j *Job, files []string, rspec domain.ResizeSpec, ospec domain.OutputSpec) {
	j.markRunning()
	total := len(files)
	report := domain.Report{Total: total}
	j.setProgress(0, total)

	cancelled := false
	for idx, path := range files {
		if ctx.Err() != nil {
			j.appendLog("processing cancelled")
			cancelled = true
			break
		}

		name := filepath.Base(path)
		j.appendLog(fmt.Sprintf("processing: %s", name))

		res, err := m.processor.ProcessFile(ctx, path, rspec, ospec)
		if err != nil {
			report.Failed++
			if errors.Is(err, domain.ErrSourceTooNarrow) {
				j.appendLog(fmt.Sprintf("skipped %s: width already at or below %d", name, rspec.Width))
			} else {
				j.appendLog(fmt.Sprintf("failed %s: %v", name, err))
				zlog.Logger.Error().Err(err).Str("path", path).Msg("file processing failed")
			}
			j.setProgress(idx+1, total)
			continue
		}

		report.Succeeded++
		j.appendLog(fmt.Sprintf("saved %s (%dx%d -> %dx%d)", res.OutputPath,
			res.OrigWidth, res.OrigHeight, res.Width, res.Height))

		if m.uploads != nil {
			m.publish(ctx, j, res.OutputPath)
		}

		j.setProgress(idx+1, total)
	}

	j.appendLog(fmt.Sprintf("done | total: %d | succeeded: %d | failed: %d",
		report.Total, report.Succeeded, report.Failed))
	j.setReport(report)

	zlog.Logger.Info().
		Str("job_id", j.ID).
		Int("total", report.Total).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Bool("cancelled", cancelled).
		Msg("batch finished")

	if cancelled {
		j.finish(domain.StatusCancelled, nil)
		return
	}
	j.finish(domain.StatusCompleted, nil)
}

// publish mirrors a written output into the upload backend. Publication
// failures are logged but never counted against the batch.
func (m *Manager) publish(ctx context.Context, j *Job, outPath string) {
	f, err := os.Open(outPath)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("path", outPath).Msg("publish: cannot reopen output")
		return
	}
	defer f.Close()

	stored, err := m.uploads.SaveProcessed(ctx, filepath.Base(outPath), f)
	if err != nil {
		j.appendLog(fmt.Sprintf("publish failed for %s: %v", filepath.Base(outPath), err))
		return
	}
	j.appendLog(fmt.Sprintf("published: %s", stored))
}
