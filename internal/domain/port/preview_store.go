package port

import (
	"context"
	"errors"
)

var ErrPreviewNotFound = errors.New("preview not found")

// PreviewStore хранит временные превью. Каждая ссылка, полученная через
// Acquire, должна быть освобождена через Release.
type PreviewStore interface {
	Acquire(ctx context.Context, data []byte, mediaType string) (string, error)
	Get(ctx context.Context, id string) ([]byte, string, error)
	Release(ctx context.Context, id string) error
}
