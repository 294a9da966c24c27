package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/config"
)

// Storage holds uploaded blobs addressed by slash-separated keys.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		s, err := NewS3(context.Background(), cfg)
		if err != nil {
			return nil, errors.Wrap(err, "init s3 storage")
		}
		return s, nil
	default:
		s, err := NewLocal(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			return nil, errors.Wrap(err, "init local storage")
		}
		return s, nil
	}
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
