package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
)

const defaultMaxImageBytes = 5 << 20

var imageContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// BlobCleaner queues blob deletions for background workers. Enqueue
// reports false when the deletion was dropped.
type BlobCleaner interface {
	Enqueue(url string) bool
}

type ImageService struct {
	store    ports.BlobStore
	cleaner  BlobCleaner
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

// NewImageService returns an image service. A nil store disables uploads.
func NewImageService(store ports.BlobStore, cleaner BlobCleaner, maxBytes int64, log zerolog.Logger) *ImageService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	return &ImageService{store: store, cleaner: cleaner, maxBytes: maxBytes, log: log, now: time.Now}
}

// Upload validates the file and stores it under events/<yyyy>/<mm>/<uuid>.<ext>.
func (s *ImageService) Upload(ctx context.Context, img ports.ImageUpload) (string, error) {
	if s.store == nil {
		return "", domain.NewValidationError("img", "image uploads are not enabled")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(img.Filename), "."))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", domain.NewValidationError("img", "only jpg, jpeg, png, gif and webp images are allowed")
	}
	if img.Size > s.maxBytes {
		return "", domain.NewValidationError("img", fmt.Sprintf("image must not exceed %d bytes", s.maxBytes))
	}
	if img.Size == 0 || img.Body == nil {
		return "", domain.NewValidationError("img", "image is empty")
	}

	now := s.now().UTC()
	key := fmt.Sprintf("events/%04d/%02d/%s.%s", now.Year(), int(now.Month()), uuid.NewString(), ext)
	url, err := s.store.Put(ctx, key, contentType, img.Body, img.Size)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	s.log.Info().Str("key", key).Int64("size", img.Size).Msg("image uploaded")
	return url, nil
}

// Release schedules deletion of an image this service stored. URLs that
// point elsewhere are left alone.
func (s *ImageService) Release(url string) {
	if s.store == nil || s.cleaner == nil || url == "" || !s.store.Owns(url) {
		return
	}
	if !s.cleaner.Enqueue(url) {
		s.log.Warn().Str("url", url).Msg("image cleanup dropped")
	}
}
