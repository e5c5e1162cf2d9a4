package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/domain"
	"github.com/imageopt/imageopt/internal/filter"
	"github.com/imageopt/imageopt/internal/helpers"
	"github.com/imageopt/imageopt/internal/infrastructure/processor"
	"github.com/imageopt/imageopt/internal/job"
	"github.com/imageopt/imageopt/internal/scanner"
	"github.com/imageopt/imageopt/internal/usecase"
)

type options struct {
	dir       string
	recursive bool

	scale float64
	width int

	format   string
	quality  int
	saveMode string
	outDir   string

	nameContains string
	nameExcludes string
	minSizeMB    float64
	minWidth     int
	maxWidth     int
	minHeight    int
	maxHeight    int
	formats      string
}

func parseFlags() *options {
	o := &options{}
	flag.StringVar(&o.dir, "dir", "", "directory to scan for images (required)")
	flag.BoolVar(&o.recursive, "recursive", true, "descend into subdirectories")
	flag.Float64Var(&o.scale, "scale", 0, "scale factor in (0,1], e.g. 0.5")
	flag.IntVar(&o.width, "width", 0, "target width in pixels, height keeps aspect ratio")
	flag.StringVar(&o.format, "format", "original", "output format: original|png|jpeg|webp")
	flag.IntVar(&o.quality, "quality", 95, "quality 1-100 (JPEG/WEBP)")
	flag.StringVar(&o.saveMode, "mode", "newfile", "save mode: overwrite|newfile")
	flag.StringVar(&o.outDir, "out", "", "destination directory (default: next to each source)")
	flag.StringVar(&o.nameContains, "name-contains", "", "only files whose name contains this substring")
	flag.StringVar(&o.nameExcludes, "name-excludes", "", "skip files whose name contains this substring")
	flag.Float64Var(&o.minSizeMB, "min-size-mb", 0, "only files larger than this size in MB")
	flag.IntVar(&o.minWidth, "min-width", 0, "only files wider than this")
	flag.IntVar(&o.maxWidth, "max-width", 0, "only files narrower than this")
	flag.IntVar(&o.minHeight, "min-height", 0, "only files taller than this")
	flag.IntVar(&o.maxHeight, "max-height", 0, "only files shorter than this")
	flag.StringVar(&o.formats, "formats", "", "comma-separated extension filter, e.g. jpg,png")
	flag.Parse()
	return o
}

func (o *options) validate() error {
	if o.dir == "" {
		return fmt.Errorf("-dir is required")
	}
	if o.scale == 0 && o.width == 0 {
		return fmt.Errorf("specify either -scale or -width")
	}
	if o.scale != 0 && o.width != 0 {
		return fmt.Errorf("-scale and -width cannot be used together")
	}
	return nil
}

func (o *options) resizeSpec() domain.ResizeSpec {
	if o.scale != 0 {
		return domain.ResizeSpec{Mode: domain.ResizeScale, Scale: o.scale}
	}
	return domain.ResizeSpec{Mode: domain.ResizeWidth, Width: o.width}
}

func (o *options) outputSpec() domain.OutputSpec {
	format := o.format
	if format == "jpg" {
		format = "jpeg"
	}
	return domain.OutputSpec{
		Format:  domain.OutputFormat(format),
		Quality: o.quality,
		Policy:  domain.SavePolicy(o.saveMode),
		DestDir: o.outDir,
	}
}

func (o *options) criteria() filter.Criteria {
	return filter.Criteria{
		NameContains: o.nameContains,
		NameExcludes: o.nameExcludes,
		MinSize:      helpers.MBToBytes(o.minSizeMB),
		MinWidth:     o.minWidth,
		MaxWidth:     o.maxWidth,
		MinHeight:    o.minHeight,
		MaxHeight:    o.maxHeight,
		Formats:      helpers.SplitAndTrim(o.formats, ","),
	}
}

func main() {
	zlog.Init()
	opts := parseFlags()
	if err := opts.validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := scanner.New(50)
	proc := processor.New(retry.Strategy{Attempts: 3, Delay: 200 * time.Millisecond, Backoff: 2.0})
	// Log truncation would desync the line-by-line echo in follow, so the
	// CLI keeps the whole log.
	manager := job.NewManager(sc, proc, nil, 1<<20, 0)
	uc := usecase.NewBatchUsecase(manager)

	fmt.Printf("scanning %s (recursive=%v)...\n", opts.dir, opts.recursive)
	files, err := sc.Scan(ctx, opts.dir, opts.recursive, func(found int) {
		fmt.Printf("scanned %d image files...\n", found)
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("dir", opts.dir).Msg("scan failed")
		os.Exit(1)
	}
	fmt.Printf("found %d image files\n", len(files))

	snap, err := uc.StartBatch(ctx, files, opts.criteria(), opts.resizeSpec(), opts.outputSpec())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("batch rejected")
		os.Exit(1)
	}

	report := follow(ctx, uc, snap.ID)
	if report == nil || report.Succeeded == 0 {
		os.Exit(1)
	}
}

// follow polls the job, echoing new log lines until it reaches a terminal
// state, and returns the final report.
func follow(ctx context.Context, uc *usecase.BatchUsecase, id string) *domain.Report {
	printed := 0
	for {
		snap, err := uc.Snapshot(id)
		if err != nil {
			zlog.Logger.Error().Err(err).Str("job_id", id).Msg("lost track of job")
			return nil
		}
		for ; printed < len(snap.Log); printed++ {
			fmt.Println(snap.Log[printed])
		}
		if snap.Status.Terminal() {
			return snap.Report
		}
		select {
		case <-ctx.Done():
			// The final lines flush on the next pass once the runner
			// acknowledges the cancel.
			_ = uc.Cancel(id)
			time.Sleep(100 * time.Millisecond)
		case <-time.After(200 * time.Millisecond):
		}
	}
}
