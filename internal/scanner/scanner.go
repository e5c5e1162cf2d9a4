package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wb-go/wbf/zlog"
)

// imageExtensions are the file extensions treated as candidate images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".webp": true,
}

// IsImagePath reports whether path has a recognized image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ProgressFunc receives the running count of discovered files.
type ProgressFunc func(found int)

type Scanner struct {
	progressEvery int
}

// New creates a Scanner that reports progress every progressEvery files.
func New(progressEvery int) *Scanner {
	if progressEvery <= 0 {
		progressEvery = 50
	}
	return &Scanner{progressEvery: progressEvery}
}

// Scan collects image files under dir, walking subdirectories when recursive
// is set. The context is checked between entries; a cancelled scan returns
// ctx.Err() with whatever was collected so far discarded by the caller. Any
// filesystem error aborts the scan.
func (s *Scanner) Scan(ctx context.Context, dir string, recursive bool, progress ProgressFunc) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", dir)
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				return nil
			}
			if !IsImagePath(path) {
				return nil
			}
			files = append(files, path)
			if progress != nil && len(files)%s.progressEvery == 0 {
				progress(len(files))
			}
			return nil
		})
	} else {
		var entries []os.DirEntry
		entries, err = os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				if ctx.Err() != nil {
					err = ctx.Err()
					break
				}
				if e.IsDir() || !IsImagePath(e.Name()) {
					continue
				}
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	if err != nil {
		return nil, err
	}

	files = dedupeSorted(files)

	zlog.Logger.Info().
		Str("dir", dir).
		Bool("recursive", recursive).
		Int("files", len(files)).
		Msg("directory scan finished")

	return files, nil
}

func dedupeSorted(files []string) []string {
	sort.Strings(files)
	out := files[:0]
	var prev string
	for i, f := range files {
		if i == 0 || f != prev {
			out = append(out, f)
		}
		prev = f
	}
	return out
}
