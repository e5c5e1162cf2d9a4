package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wb-go/wbf/zlog"

	"github.com/imageopt/imageopt/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage publishes processed files to a secondary backend in addition to
// the filesystem output the batch writes itself.
type Storage interface {
	SaveProcessed(ctx context.Context, filename string, reader io.Reader) (string, error)
	GetProcessed(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

func New(cfg *config.UploadConfig) (Storage, error) {
	switch cfg.Type {
	case "local":
		zlog.Logger.Info().Msg("initializing local upload storage")
		return NewLocalStorage(cfg)
	case "s3":
		zlog.Logger.Info().Msg("initializing s3 upload storage")
		return NewS3Storage(cfg)
	default:
		zlog.Logger.Error().Str("type", cfg.Type).Msg("unsupported storage type, use 'local' or 's3'")
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
