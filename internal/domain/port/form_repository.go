package port

import (
	"context"

	"date-classifier/internal/domain/entity"
)

// FormRepository интерфейс хранилища форм по сессиям
type FormRepository interface {
	// Get возвращает копию формы сессии, создаёт пустую если не найдена
	Get(ctx context.Context, sessionID string) (*entity.Form, error)

	// Save сохраняет состояние формы
	Save(ctx context.Context, form *entity.Form) error

	// Delete удаляет форму сессии
	Delete(ctx context.Context, sessionID string) error
}
