package processor

import (
	"fmt"
	"math"

	"github.com/imageopt/imageopt/internal/domain"
)

// TargetSize computes the output dimensions for a source of origW x origH.
// Scale mode rounds both axes; width mode keeps the aspect ratio and
// refuses sources whose width is already at or below the target.
func TargetSize(origW, origH int, spec domain.ResizeSpec) (int, int, error) {
	if origW <= 0 || origH <= 0 {
		return 0, 0, fmt.Errorf("invalid source dimensions %dx%d", origW, origH)
	}
	if err := spec.Validate(); err != nil {
		return 0, 0, err
	}

	switch spec.Mode {
	case domain.ResizeScale:
		w := int(math.Round(float64(origW) * spec.Scale))
		h := int(math.Round(float64(origH) * spec.Scale))
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		return w, h, nil
	case domain.ResizeWidth:
		if origW <= spec.Width {
			return 0, 0, fmt.Errorf("%w: %d <= %d", domain.ErrSourceTooNarrow, origW, spec.Width)
		}
		h := int(math.Round(float64(origH) * float64(spec.Width) / float64(origW)))
		if h < 1 {
			h = 1
		}
		return spec.Width, h, nil
	default:
		return 0, 0, domain.ErrInvalidResizeMode
	}
}
