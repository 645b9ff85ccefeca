package storage

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/config"
)

// AssetStore keeps binary assets such as recipe images and resolves their public URL.
type AssetStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New builds the asset store selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (AssetStore, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3: %w", err)
		}
		return NewS3Store(s3cfg), nil
	case "minio":
		return NewMinIOStore(ctx, MinIOOptions{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
