package domain

type ResizeMode string

const (
	ResizeScale ResizeMode = "scale"
	ResizeWidth ResizeMode = "width"
)

type OutputFormat string

const (
	FormatOriginal OutputFormat = "original"
	FormatPNG      OutputFormat = "png"
	FormatJPEG     OutputFormat = "jpeg"
	FormatWEBP     OutputFormat = "webp"
)

type SavePolicy string

const (
	PolicyOverwrite SavePolicy = "overwrite"
	PolicyNewFile   SavePolicy = "newfile"
)

// ResizeSpec selects one of the two resize strategies: a uniform scale
// factor in (0,1], or a fixed target width with proportional height.
type ResizeSpec struct {
	Mode  ResizeMode `json:"mode"`
	Scale float64    `json:"scale,omitempty"`
	Width int        `json:"width,omitempty"`
}

func (s ResizeSpec) Validate() error {
	switch s.Mode {
	case ResizeScale:
		if s.Scale <= 0 || s.Scale > 1 {
			return ErrInvalidScale
		}
	case ResizeWidth:
		if s.Width < 1 {
			return ErrInvalidWidth
		}
	default:
		return ErrInvalidResizeMode
	}
	return nil
}

// OutputSpec describes how processed files are encoded and placed. DestDir
// is optional; empty means "next to the source file".
type OutputSpec struct {
	Format  OutputFormat `json:"format"`
	Quality int          `json:"quality"`
	Policy  SavePolicy   `json:"policy"`
	DestDir string       `json:"dest_dir,omitempty"`
}

func (s OutputSpec) Validate() error {
	switch s.Format {
	case FormatOriginal, FormatPNG, FormatJPEG, FormatWEBP:
	default:
		return ErrInvalidFormat
	}
	if s.Quality < 1 || s.Quality > 100 {
		return ErrInvalidQuality
	}
	switch s.Policy {
	case PolicyOverwrite, PolicyNewFile:
	default:
		return ErrInvalidSavePolicy
	}
	return nil
}
