package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
)

func TestImageService_Upload(t *testing.T) {
	store := &stubBlobStore{prefix: "https://cdn.example.com/"}
	svc := NewImageService(store, &stubCleaner{accept: true}, 10, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2030, 3, 9, 0, 0, 0, 0, time.UTC) }

	url, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: "Poster.JPG", Size: 4, Body: strings.NewReader("data")})
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	key := regexp.MustCompile(`^events/2030/03/[0-9a-f-]{36}\.jpg$`)
	if len(store.keys) != 1 || !key.MatchString(store.keys[0]) {
		t.Fatalf("unexpected key: %v", store.keys)
	}
	if url != store.prefix+store.keys[0] {
		t.Errorf("url = %q", url)
	}
	if store.types[0] != "image/jpeg" || store.payload[0] != "data" {
		t.Errorf("unexpected object: %s %q", store.types[0], store.payload[0])
	}
}

func TestImageService_Upload_Rejects(t *testing.T) {
	svc := NewImageService(&stubBlobStore{}, nil, 10, zerolog.Nop())

	cases := []struct {
		name string
		img  ports.ImageUpload
	}{
		{"extension", ports.ImageUpload{Filename: "doc.pdf", Size: 3, Body: strings.NewReader("pdf")}},
		{"no extension", ports.ImageUpload{Filename: "image", Size: 3, Body: strings.NewReader("img")}},
		{"too large", ports.ImageUpload{Filename: "a.png", Size: 11, Body: strings.NewReader("01234567890")}},
		{"empty", ports.ImageUpload{Filename: "a.png", Size: 0, Body: strings.NewReader("")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Upload(context.Background(), tc.img); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestImageService_Upload_Disabled(t *testing.T) {
	svc := NewImageService(nil, nil, 0, zerolog.Nop())
	_, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: "a.png", Size: 1, Body: strings.NewReader("x")})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImageService_Upload_StoreError(t *testing.T) {
	boom := errors.New("s3 down")
	svc := NewImageService(&stubBlobStore{putErr: boom}, nil, 10, zerolog.Nop())
	_, err := svc.Upload(context.Background(), ports.ImageUpload{Filename: "a.gif", Size: 1, Body: strings.NewReader("x")})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestImageService_Release(t *testing.T) {
	cleaner := &stubCleaner{accept: true}
	svc := NewImageService(&stubBlobStore{prefix: "https://cdn.example.com/"}, cleaner, 10, zerolog.Nop())

	svc.Release("https://cdn.example.com/events/2030/03/x.png")
	svc.Release("https://elsewhere.example.com/x.png")
	svc.Release("")

	if len(cleaner.urls) != 1 || cleaner.urls[0] != "https://cdn.example.com/events/2030/03/x.png" {
		t.Fatalf("unexpected enqueued urls: %v", cleaner.urls)
	}
}
