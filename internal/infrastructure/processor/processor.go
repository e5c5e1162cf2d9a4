package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	_ "golang.org/x/image/webp"

	"github.com/imageopt/imageopt/internal/domain"
)

// Result describes one successfully processed file.
type Result struct {
	SourcePath string
	OutputPath string
	OrigWidth  int
	OrigHeight int
	Width      int
	Height     int
	Bytes      int64
}

// Processor performs the per-file resize-and-save step. It holds no mutable
// state, so one instance is shared across jobs.
type Processor struct {
	saveRetry retry.Strategy
}

func New(saveRetry retry.Strategy) *Processor {
	if saveRetry.Attempts <= 0 {
		saveRetry.Attempts = 1
	}
	return &Processor{saveRetry: saveRetry}
}

// ProcessFile opens path, resizes it per rspec and writes the result per
// ospec. The returned Result is valid only when err is nil. The source file
// is never removed; overwrite policy with an unchanged extension replaces
// its content in place.
func (p *Processor) ProcessFile(ctx context.Context, path string, rspec domain.ResizeSpec, ospec domain.OutputSpec) (Result, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("open image: %w", err)
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()

	newW, newH, err := TargetSize(origW, origH, rspec)
	if err != nil {
		return Result{}, err
	}

	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)

	outPath, format, err := ResolveOutput(path, ospec, newW, newH)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := encode(&buf, resized, format, ospec.Quality); err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", format, err)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := p.writeFile(outPath, buf.Bytes()); err != nil {
		return Result{}, err
	}

	zlog.Logger.Debug().
		Str("src", path).
		Str("dst", outPath).
		Str("format", string(format)).
		Int("width", newW).
		Int("height", newH).
		Msg("file processed")

	return Result{
		SourcePath: path,
		OutputPath: outPath,
		OrigWidth:  origW,
		OrigHeight: origH,
		Width:      newW,
		Height:     newH,
		Bytes:      int64(buf.Len()),
	}, nil
}

// encode writes img to w in the given format. JPEG cannot carry an alpha
// channel, so translucent pixels are flattened onto white first; PNG and
// WEBP keep the channel.
func encode(w io.Writer, img image.Image, format EncodeFormat, quality int) error {
	switch format {
	case EncodeJPEG:
		return imaging.Encode(w, flattenAlpha(img), imaging.JPEG, imaging.JPEGQuality(quality))
	case EncodePNG:
		return imaging.Encode(w, img, imaging.PNG)
	case EncodeWEBP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case EncodeGIF:
		return imaging.Encode(w, img, imaging.GIF)
	case EncodeBMP:
		return imaging.Encode(w, flattenAlpha(img), imaging.BMP)
	default:
		return fmt.Errorf("unknown encode format %q", format)
	}
}

// flattenAlpha composites img over a white background. Fully opaque images
// are returned untouched.
func flattenAlpha(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}

// writeFile stores data at path, retrying per the configured strategy.
// Destinations on network mounts are the reason this is retried at all.
func (p *Processor) writeFile(path string, data []byte) error {
	attempt := 0
	err := retry.Do(func() error {
		attempt++
		if err := writeOnce(path, data); err != nil {
			zlog.Logger.Warn().Err(err).Str("path", path).
				Int("attempt", attempt).
				Msg("write failed")
			return err
		}
		return nil
	}, p.saveRetry)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeOnce(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
