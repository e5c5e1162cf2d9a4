package scanner

import (
	"fmt"
	"image"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/imageopt/imageopt/internal/domain"
)

// Probe reads file metadata and the image header without decoding pixel
// data, so it is cheap enough to run over a whole selection.
func Probe(path string) (domain.FileInfo, error) {
	fi := domain.NewFileInfo(path)

	stat, err := os.Stat(path)
	if err != nil {
		return fi, fmt.Errorf("stat %s: %w", path, err)
	}
	fi.Size = stat.Size()

	f, err := os.Open(path)
	if err != nil {
		return fi, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return fi, fmt.Errorf("decode header %s: %w", path, err)
	}
	fi.Width = cfg.Width
	fi.Height = cfg.Height
	fi.Format = strings.ToLower(format)

	return fi, nil
}
