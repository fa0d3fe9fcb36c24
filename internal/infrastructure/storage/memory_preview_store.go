package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"date-classifier/internal/domain/port"
)

type preview struct {
	data      []byte
	mediaType string
}

// MemoryPreviewStore держит превью в памяти до явного Release
type MemoryPreviewStore struct {
	mu       sync.RWMutex
	previews map[string]preview
}

// NewMemoryPreviewStore создаёт пустое хранилище превью
func NewMemoryPreviewStore() *MemoryPreviewStore {
	return &MemoryPreviewStore{
		previews: make(map[string]preview),
	}
}

// Acquire сохраняет превью и возвращает ссылку на него
func (s *MemoryPreviewStore) Acquire(ctx context.Context, data []byte, mediaType string) (string, error) {
	id := uuid.New().String()

	s.mu.Lock()
	s.previews[id] = preview{data: data, mediaType: mediaType}
	s.mu.Unlock()

	return id, nil
}

// Get возвращает содержимое превью
func (s *MemoryPreviewStore) Get(ctx context.Context, id string) ([]byte, string, error) {
	s.mu.RLock()
	p, ok := s.previews[id]
	s.mu.RUnlock()

	if !ok {
		return nil, "", port.ErrPreviewNotFound
	}
	return p.data, p.mediaType, nil
}

// Release освобождает превью. Повторный вызов не является ошибкой.
func (s *MemoryPreviewStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.previews, id)
	s.mu.Unlock()

	return nil
}

// Len возвращает число удерживаемых превью
func (s *MemoryPreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.previews)
}

var _ port.PreviewStore = (*MemoryPreviewStore)(nil)
