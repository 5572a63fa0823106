// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/footycollect/footycollect-api/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// ObjectStore holds photo binaries. The catalog only persists the key and URL.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (*UploadResult, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New builds the store selected by cfg.Backend.
func New(cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Store(cfg)
	case "local":
		return NewLocalStore(cfg.LocalDir, cfg.LocalBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// GenerateKey returns a unique key under folder that keeps the extension of
// originalName.
func GenerateKey(folder, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, uuid.NewString(), ext)

	if folder != "" {
		return folder + "/" + filename
	}
	return filename
}

// OptimizedKey derives the key of the optimized variant of key.
func OptimizedKey(key string) string {
	ext := filepath.Ext(key)
	return "optimized/" + strings.TrimSuffix(key, ext) + ".jpg"
}

// DetectImageType inspects the file signature and returns the image MIME
// type, or "" when the bytes are not a supported image.
func DetectImageType(head []byte) string {
	switch {
	case len(head) >= 3 && head[0] == 0xFF && head[1] == 0xD8 && head[2] == 0xFF:
		return "image/jpeg"
	case len(head) >= 8 && head[0] == 0x89 && head[1] == 0x50 && head[2] == 0x4E && head[3] == 0x47:
		return "image/png"
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return "image/webp"
	}
	return ""
}
