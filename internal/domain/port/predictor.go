package port

import (
	"context"

	"date-classifier/internal/domain/entity"
)

// Predictor интерфейс удалённого сервиса классификации
type Predictor interface {
	// Predict отправляет сжатое изображение и возвращает класс и уверенность
	Predict(ctx context.Context, img *entity.CompressedImage) (*entity.PredictionResult, error)
}
