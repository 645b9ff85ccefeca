package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/internal/storage"
)

const (
	maxImageBytes     = 5 * 1024 * 1024
	maxImageDimension = 1200
	recipeImagePrefix = "recipes/images/"
)

// ImageService turns uploaded image payloads into stored recipe assets.
type ImageService struct {
	store storage.AssetStore
}

func NewImageService(store storage.AssetStore) *ImageService {
	return &ImageService{store: store}
}

// SaveBase64 decodes a base64 image (optionally a data URI), fits it into
// 1200x1200, re-encodes it as JPEG and stores it. It returns the asset key.
func (s *ImageService) SaveBase64(ctx context.Context, payload string) (string, error) {
	data, err := decodeImagePayload(payload)
	if err != nil {
		return "", fieldError("image", err.Error())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fieldError("image", "is not a valid image")
	}
	if b := img.Bounds(); b.Dx() > maxImageDimension || b.Dy() > maxImageDimension {
		img = imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	key := recipeImagePrefix + uuid.NewString() + ".jpg"
	if err := s.store.Put(ctx, key, buf.Bytes(), "image/jpeg"); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes a stored asset. Empty keys are ignored.
func (s *ImageService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.store.Delete(ctx, key)
}

// discard deletes an asset that is no longer referenced, logging failures.
func (s *ImageService) discard(ctx context.Context, key string) {
	if err := s.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to delete image asset")
	}
}

// URL resolves the public URL of an asset key, or nil when there is none.
func (s *ImageService) URL(key string) *string {
	if key == "" {
		return nil
	}
	url := s.store.URL(key)
	return &url
}

func decodeImagePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("cannot be blank")
	}
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 || !strings.Contains(payload[:comma], ";base64") {
			return nil, fmt.Errorf("must be a base64 data URI")
		}
		if !strings.HasPrefix(payload, "data:image/") {
			return nil, fmt.Errorf("must be an image")
		}
		payload = payload[comma+1:]
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageBytes {
		return nil, fmt.Errorf("must not exceed %dMB", maxImageBytes/(1024*1024))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("is not valid base64")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("is not a valid image")
	}
	return data, nil
}
