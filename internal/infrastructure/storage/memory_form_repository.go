package storage

import (
	"context"
	"sync"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
)

// MemoryFormRepository in-memory хранилище форм
type MemoryFormRepository struct {
	mu    sync.RWMutex
	forms map[string]*entity.Form
}

// NewMemoryFormRepository создаёт новое in-memory хранилище
func NewMemoryFormRepository() *MemoryFormRepository {
	return &MemoryFormRepository{
		forms: make(map[string]*entity.Form),
	}
}

// Get возвращает копию формы по ID сессии, создаёт новую если не найдена
func (r *MemoryFormRepository) Get(ctx context.Context, sessionID string) (*entity.Form, error) {
	r.mu.RLock()
	form, exists := r.forms[sessionID]
	r.mu.RUnlock()

	if exists {
		return form.Clone(), nil
	}

	// Пустая форма не сохраняется до первого Save
	return entity.NewForm(sessionID), nil
}

// Save сохраняет состояние формы
func (r *MemoryFormRepository) Save(ctx context.Context, form *entity.Form) error {
	r.mu.Lock()
	r.forms[form.SessionID] = form.Clone()
	r.mu.Unlock()

	return nil
}

// Delete удаляет форму сессии
func (r *MemoryFormRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.forms, sessionID)
	r.mu.Unlock()

	return nil
}

// Len возвращает число сохранённых форм
func (r *MemoryFormRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

// Проверка реализации интерфейса
var _ port.FormRepository = (*MemoryFormRepository)(nil)
