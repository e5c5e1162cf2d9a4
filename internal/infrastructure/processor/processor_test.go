package processor

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/domain"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

// writePNG creates a w x h test image at path filled with c.
func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func newTestProcessor() *Processor {
	return New(retry.Strategy{Attempts: 1})
}

func TestProcessFileScaleNewFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writePNG(t, src, 8, 6, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	res, err := newTestProcessor().ProcessFile(context.Background(), src,
		domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0.5},
		domain.OutputSpec{Format: domain.FormatOriginal, Quality: 95, Policy: domain.PolicyNewFile},
	)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "photo_4x3.png"), res.OutputPath)
	require.Equal(t, 8, res.OrigWidth)
	require.Equal(t, 6, res.OrigHeight)

	// The source must survive a newfile run untouched.
	require.FileExists(t, src)

	out, err := imaging.Open(res.OutputPath)
	require.NoError(t, err)
	require.Equal(t, 4, out.Bounds().Dx())
	require.Equal(t, 3, out.Bounds().Dy())
}

func TestProcessFileWidthMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wide.png")
	writePNG(t, src, 40, 20, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	res, err := newTestProcessor().ProcessFile(context.Background(), src,
		domain.ResizeSpec{Mode: domain.ResizeWidth, Width: 20},
		domain.OutputSpec{Format: domain.FormatOriginal, Quality: 95, Policy: domain.PolicyNewFile},
	)
	require.NoError(t, err)
	require.Equal(t, 20, res.Width)
	require.Equal(t, 10, res.Height)
}

func TestProcessFileWidthModeTooNarrow(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "small.png")
	writePNG(t, src, 10, 10, color.NRGBA{A: 255})

	_, err := newTestProcessor().ProcessFile(context.Background(), src,
		domain.ResizeSpec{Mode: domain.ResizeWidth, Width: 100},
		domain.OutputSpec{Format: domain.FormatOriginal, Quality: 95, Policy: domain.PolicyNewFile},
	)
	require.ErrorIs(t, err, domain.ErrSourceTooNarrow)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestProcessFileJPEGFlattensAlpha(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "glass.png")
	writePNG(t, src, 10, 10, color.NRGBA{R: 255, A: 0})

	res, err := newTestProcessor().ProcessFile(context.Background(), src,
		domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0.5},
		domain.OutputSpec{Format: domain.FormatJPEG, Quality: 95, Policy: domain.PolicyNewFile},
	)
	require.NoError(t, err)
	require.Equal(t, ".jpg", filepath.Ext(res.OutputPath))

	out, err := imaging.Open(res.OutputPath)
	require.NoError(t, err)
	r, g, b, _ := out.At(out.Bounds().Min.X, out.Bounds().Min.Y).RGBA()
	// Transparent pixels land on a white background, not black.
	require.Greater(t, r>>8, uint32(240))
	require.Greater(t, g>>8, uint32(240))
	require.Greater(t, b>>8, uint32(240))
}

func TestProcessFileOverwriteFormatChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 8, 8, color.NRGBA{G: 128, A: 255})

	res, err := newTestProcessor().ProcessFile(context.Background(), src,
		domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0.5},
		domain.OutputSpec{Format: domain.FormatJPEG, Quality: 95, Policy: domain.PolicyOverwrite},
	)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "pic.jpg"), res.OutputPath)

	// A format change writes next to the source and leaves it in place.
	require.FileExists(t, src)
	require.FileExists(t, res.OutputPath)
}

func TestProcessFileOverwriteInPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 8, 8, color.NRGBA{B: 200, A: 255})

	res, err := newTestProcessor().ProcessFile(context.Background(), src,
		domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0.5},
		domain.OutputSpec{Format: domain.FormatOriginal, Quality: 95, Policy: domain.PolicyOverwrite},
	)
	require.NoError(t, err)
	require.Equal(t, src, res.OutputPath)

	out, err := imaging.Open(src)
	require.NoError(t, err)
	require.Equal(t, 4, out.Bounds().Dx())
}

func TestProcessFileDestDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 8, 8, color.NRGBA{A: 255})
	dest := filepath.Join(dir, "out")

	res, err := newTestProcessor().ProcessFile(context.Background(), src,
		domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0.5},
		domain.OutputSpec{Format: domain.FormatOriginal, Quality: 95, Policy: domain.PolicyNewFile, DestDir: dest},
	)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "pic_4x4.png"), res.OutputPath)
	require.FileExists(t, res.OutputPath)
}

func TestProcessFileWriteFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 8, 8, color.NRGBA{A: 255})

	// Occupy the output path with a directory so every write attempt fails.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pic_4x4.png"), 0o755))

	p := New(retry.Strategy{Attempts: 2, Delay: time.Millisecond, Backoff: 2.0})
	_, err := p.ProcessFile(context.Background(), src,
		domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0.5},
		domain.OutputSpec{Format: domain.FormatOriginal, Quality: 95, Policy: domain.PolicyNewFile},
	)
	require.ErrorContains(t, err, "write")
}

func TestProcessFileCancelled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.png")
	writePNG(t, src, 8, 8, color.NRGBA{A: 255})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestProcessor().ProcessFile(ctx, src,
		domain.ResizeSpec{Mode: domain.ResizeScale, Scale: 0.5},
		domain.OutputSpec{Format: domain.FormatOriginal, Quality: 95, Policy: domain.PolicyNewFile},
	)
	require.ErrorIs(t, err, context.Canceled)
	require.NoFileExists(t, filepath.Join(dir, "pic_4x4.png"))
}
