package filter

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/domain"
)

// Criteria is the optional predicate set applied before a batch run. Zero
// values deactivate the corresponding predicate; an entirely zero Criteria
// passes every file through.
type Criteria struct {
	NameContains string   `json:"name_contains,omitempty"`
	NameExcludes string   `json:"name_excludes,omitempty"`
	MinSize      int64    `json:"min_size,omitempty"`
	MinWidth     int      `json:"min_width,omitempty"`
	MaxWidth     int      `json:"max_width,omitempty"`
	MinHeight    int      `json:"min_height,omitempty"`
	MaxHeight    int      `json:"max_height,omitempty"`
	Formats      []string `json:"formats,omitempty"`
}

func (c Criteria) needsDimensions() bool {
	return c.MinWidth > 0 || c.MaxWidth > 0 || c.MinHeight > 0 || c.MaxHeight > 0
}

func (c Criteria) needsSize() bool {
	return c.MinSize > 0
}

// ProbeFunc resolves a path to its FileInfo. It is injected so the chain can
// be tested without touching the filesystem. On error the returned FileInfo
// still carries whatever was read: a file whose header cannot be decoded
// keeps its on-disk size.
type ProbeFunc func(path string) (domain.FileInfo, error)

// Apply runs the conjunctive predicate chain over files and returns the
// paths satisfying every active predicate. A file without readable
// dimensions is excluded only when a dimension bound is active; the size
// predicate needs just the stat data, so an undecodable file can still pass
// it and surface its decode error during processing. The context is checked
// between files.
func Apply(ctx context.Context, files []string, c Criteria, probe ProbeFunc) ([]string, error) {
	contains := strings.ToLower(strings.TrimSpace(c.NameContains))
	excludes := strings.ToLower(strings.TrimSpace(c.NameExcludes))
	exts := normalizeFormats(c.Formats)

	out := make([]string, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := strings.ToLower(filepath.Base(path))
		if contains != "" && !strings.Contains(name, contains) {
			continue
		}
		if excludes != "" && strings.Contains(name, excludes) {
			continue
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(path))] {
			continue
		}

		if c.needsSize() || c.needsDimensions() {
			fi, err := probe(path)
			if err != nil {
				zlog.Logger.Warn().Err(err).Str("path", path).Msg("filter probe incomplete")
			}
			if c.needsSize() && fi.Size <= c.MinSize {
				continue
			}
			if c.needsDimensions() {
				if !fi.HasDimensions() || !passDimensions(fi, c) {
					continue
				}
			}
		}

		out = append(out, path)
	}
	return out, nil
}

// passDimensions applies strict bounds: a file exactly on a boundary is
// excluded.
func passDimensions(fi domain.FileInfo, c Criteria) bool {
	if c.MinWidth > 0 && fi.Width <= c.MinWidth {
		return false
	}
	if c.MaxWidth > 0 && fi.Width >= c.MaxWidth {
		return false
	}
	if c.MinHeight > 0 && fi.Height <= c.MinHeight {
		return false
	}
	if c.MaxHeight > 0 && fi.Height >= c.MaxHeight {
		return false
	}
	return true
}

// normalizeFormats turns user input like "jpg, PNG" into an extension set
// with leading dots. jpg and jpeg stay distinct extensions; matching is on
// the file name only.
func normalizeFormats(formats []string) map[string]bool {
	exts := make(map[string]bool, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !strings.HasPrefix(f, ".") {
			f = "." + f
		}
		exts[f] = true
	}
	return exts
}
