package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imageopt/imageopt/internal/domain"
)

// EncodeFormat is a concrete image encoding. It is wider than the
// user-facing output format set because "original" can resolve to any
// format the scanner accepts.
type EncodeFormat string

const (
	EncodeJPEG EncodeFormat = "jpeg"
	EncodePNG  EncodeFormat = "png"
	EncodeWEBP EncodeFormat = "webp"
	EncodeGIF  EncodeFormat = "gif"
	EncodeBMP  EncodeFormat = "bmp"
)

// Ext returns the canonical file extension for the format.
func (f EncodeFormat) Ext() string {
	if f == EncodeJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// resolveFormat maps the requested output format to a concrete encoding for
// one source file. "original" follows the source extension; a missing
// extension falls back to PNG.
func resolveFormat(srcPath string, format domain.OutputFormat) EncodeFormat {
	switch format {
	case domain.FormatPNG:
		return EncodePNG
	case domain.FormatJPEG:
		return EncodeJPEG
	case domain.FormatWEBP:
		return EncodeWEBP
	}

	switch strings.ToLower(filepath.Ext(srcPath)) {
	case ".jpg", ".jpeg":
		return EncodeJPEG
	case ".webp":
		return EncodeWEBP
	case ".gif":
		return EncodeGIF
	case ".bmp":
		return EncodeBMP
	case ".png":
		return EncodePNG
	default:
		return EncodePNG
	}
}

// ResolveOutput determines the output path and concrete encoding for one
// file. Overwrite policy keeps the source name, rewriting the extension when
// the format changes; newfile policy appends the output resolution to the
// stem. DestDir, when set, redirects the parent directory and is created on
// demand.
func ResolveOutput(srcPath string, spec domain.OutputSpec, newW, newH int) (string, EncodeFormat, error) {
	format := resolveFormat(srcPath, spec.Format)

	parent := filepath.Dir(srcPath)
	if spec.DestDir != "" {
		parent = spec.DestDir
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", format, fmt.Errorf("create destination directory %s: %w", parent, err)
		}
	}

	name := filepath.Base(srcPath)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	if spec.Policy == domain.PolicyOverwrite {
		if !extMatches(ext, format) {
			name = stem + format.Ext()
		}
		return filepath.Join(parent, name), format, nil
	}

	name = fmt.Sprintf("%s_%dx%d%s", stem, newW, newH, format.Ext())
	return filepath.Join(parent, name), format, nil
}

// extMatches reports whether the existing extension already denotes the
// format, so overwrite mode can keep the source name. Both .jpg and .jpeg
// count as JPEG.
func extMatches(ext string, format EncodeFormat) bool {
	ext = strings.ToLower(ext)
	if format == EncodeJPEG {
		return ext == ".jpg" || ext == ".jpeg"
	}
	return ext == "."+string(format)
}
