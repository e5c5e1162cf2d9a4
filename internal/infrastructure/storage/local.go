package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/config"
)

type localStorage struct {
	basePath     string
	processedDir string
}

func NewLocalStorage(cfg *config.UploadConfig) (Storage, error) {
	if cfg.LocalPath == "" {
		return nil, fmt.Errorf("LocalPath is empty, set upload.local_path in config or env")
	}

	s := &localStorage{
		basePath:     cfg.LocalPath,
		processedDir: cfg.ProcessedDir,
	}

	if err := os.MkdirAll(filepath.Join(s.basePath, s.processedDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create processed directory: %w", err)
	}

	return s, nil
}

func (s *localStorage) SaveProcessed(ctx context.Context, filename string, reader io.Reader) (string, error) {
	if reader == nil {
		return "", fmt.Errorf("reader is nil")
	}

	fullPath := filepath.Join(s.basePath, s.processedDir, filename)

	file, err := os.Create(fullPath)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to create file")
		return "", fmt.Errorf("create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to write file")
		return "", fmt.Errorf("write file %s: %w", fullPath, err)
	}

	relativePath := filepath.Join(s.processedDir, filename)
	zlog.Logger.Info().
		Str("path", relativePath).
		Int64("bytes", written).
		Msg("file published to local storage")

	return relativePath, nil
}

func (s *localStorage) GetProcessed(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, path)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, path)
		}
		return nil, fmt.Errorf("open file %s: %w", fullPath, err)
	}
	return file, nil
}

func (s *localStorage) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	fullPath := filepath.Join(s.basePath, path)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			zlog.Logger.Warn().Str("path", fullPath).Msg("file not found, skipping delete")
			return nil
		}
		return fmt.Errorf("delete file %s: %w", fullPath, err)
	}
	return nil
}
