package dto

import (
	"strings"

	"github.com/imageopt/imageopt/internal/domain"
	"github.com/imageopt/imageopt/internal/filter"
	"github.com/imageopt/imageopt/internal/helpers"
)

type ScanRequest struct {
	Dir       string `json:"dir" binding:"required"`
	Recursive bool   `json:"recursive"`
}

type ProcessRequest struct {
	Files  []string      `json:"files" binding:"required"`
	Filter FilterRequest `json:"filter"`
	Resize ResizeRequest `json:"resize"`
	Output OutputRequest `json:"output"`
}

// FilterRequest carries the optional predicate fields as the UI presents
// them; sizes arrive in megabytes, formats as one comma-separated string.
type FilterRequest struct {
	NameContains string  `json:"name_contains"`
	NameExcludes string  `json:"name_excludes"`
	MinSizeMB    float64 `json:"min_size_mb"`
	MinWidth     int     `json:"min_width"`
	MaxWidth     int     `json:"max_width"`
	MinHeight    int     `json:"min_height"`
	MaxHeight    int     `json:"max_height"`
	Formats      string  `json:"formats"`
}

func (r FilterRequest) ToCriteria() filter.Criteria {
	return filter.Criteria{
		NameContains: r.NameContains,
		NameExcludes: r.NameExcludes,
		MinSize:      helpers.MBToBytes(r.MinSizeMB),
		MinWidth:     r.MinWidth,
		MaxWidth:     r.MaxWidth,
		MinHeight:    r.MinHeight,
		MaxHeight:    r.MaxHeight,
		Formats:      helpers.SplitAndTrim(r.Formats, ","),
	}
}

type ResizeRequest struct {
	Mode  string  `json:"mode" binding:"required,oneof=scale width"`
	Scale float64 `json:"scale"`
	Width int     `json:"width"`
}

func (r ResizeRequest) ToSpec() domain.ResizeSpec {
	return domain.ResizeSpec{
		Mode:  domain.ResizeMode(r.Mode),
		Scale: r.Scale,
		Width: r.Width,
	}
}

type OutputRequest struct {
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	SaveMode string `json:"save_mode"`
	DestDir  string `json:"dest_dir"`
}

func (r OutputRequest) ToSpec() domain.OutputSpec {
	format := strings.ToLower(r.Format)
	if format == "jpg" {
		format = "jpeg"
	}
	return domain.OutputSpec{
		Format:  domain.OutputFormat(format),
		Quality: r.Quality,
		Policy:  domain.SavePolicy(r.SaveMode),
		DestDir: r.DestDir,
	}
}
