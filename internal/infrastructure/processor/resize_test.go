package processor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imageopt/imageopt/internal/domain"
)

func TestTargetSizeScale(t *testing.T) {
	tests := []struct {
		name         string
		origW, origH int
		scale        float64
		wantW, wantH int
	}{
		{"half", 800, 600, 0.5, 400, 300},
		{"full", 800, 600, 1.0, 800, 600},
		{"rounds up", 101, 51, 0.5, 51, 26},
		{"rounds half away from zero", 3, 3, 0.5, 2, 2},
		{"never below one pixel", 4, 4, 0.1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := TargetSize(tt.origW, tt.origH, domain.ResizeSpec{
				Mode:  domain.ResizeScale,
				Scale: tt.scale,
			})
			require.NoError(t, err)
			require.Equal(t, tt.wantW, w)
			require.Equal(t, tt.wantH, h)
		})
	}
}

func TestTargetSizeWidth(t *testing.T) {
	w, h, err := TargetSize(4000, 3000, domain.ResizeSpec{Mode: domain.ResizeWidth, Width: 1920})
	require.NoError(t, err)
	require.Equal(t, 1920, w)
	require.Equal(t, 1440, h)

	w, h, err = TargetSize(1921, 1080, domain.ResizeSpec{Mode: domain.ResizeWidth, Width: 1920})
	require.NoError(t, err)
	require.Equal(t, 1920, w)
	require.Equal(t, 1079, h)
}

func TestTargetSizeWidthTooNarrow(t *testing.T) {
	spec := domain.ResizeSpec{Mode: domain.ResizeWidth, Width: 1920}

	_, _, err := TargetSize(1920, 1080, spec)
	require.ErrorIs(t, err, domain.ErrSourceTooNarrow)

	_, _, err = TargetSize(640, 480, spec)
	require.ErrorIs(t, err, domain.ErrSourceTooNarrow)
}

func TestTargetSizeInvalidSpec(t *testing.T) {
	_, _, err := TargetSize(800, 600, domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0})
	require.ErrorIs(t, err, domain.ErrInvalidScale)

	_, _, err = TargetSize(800, 600, domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 1.5})
	require.ErrorIs(t, err, domain.ErrInvalidScale)

	_, _, err = TargetSize(800, 600, domain.ResizeSpec{Mode: domain.ResizeWidth, Width: 0})
	require.ErrorIs(t, err, domain.ErrInvalidWidth)

	_, _, err = TargetSize(800, 600, domain.ResizeSpec{Mode: "stretch"})
	require.ErrorIs(t, err, domain.ErrInvalidResizeMode)
}

func TestTargetSizeInvalidSource(t *testing.T) {
	_, _, err := TargetSize(0, 600, domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0.5})
	require.Error(t, err)
}
