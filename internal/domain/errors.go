package domain

import "errors"

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobRunning        = errors.New("a job of this kind is already running")
	ErrNoFiles           = errors.New("no files match the selection")
	ErrInvalidResizeMode = errors.New("resize mode must be 'scale' or 'width'")
	ErrInvalidScale      = errors.New("scale factor must be in (0,1]")
	ErrInvalidWidth      = errors.New("target width must be at least 1")
	ErrInvalidFormat     = errors.New("invalid or unsupported output format")
	ErrInvalidQuality    = errors.New("quality must be between 1 and 100")
	ErrInvalidSavePolicy = errors.New("save policy must be 'overwrite' or 'newfile'")
	ErrSourceTooNarrow   = errors.New("source width is already at or below the target width")
	ErrNotADirectory     = errors.New("path is not a directory")
)
