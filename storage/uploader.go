package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedContentType = errors.New("unsupported content type")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageKey builds a unique object key such as camps/<owner>/<uuid>.png.
func ImageKey(prefix, owner, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return path.Join(prefix, sanitizeSegment(owner), uuid.NewString()+ext), nil
}

func sanitizeSegment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == '@':
			return r
		}
		return '_'
	}, s)
}
