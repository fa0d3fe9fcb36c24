package port

import (
	"context"
	"errors"

	"date-classifier/internal/domain/entity"
)

var (
	// ErrDecode исходный файл не читается как изображение или слишком велик для декодирования
	ErrDecode = errors.New("failed to decode image")
	// ErrEmptyEncoding кодировщик не смог выдать данные
	ErrEmptyEncoding = errors.New("encoder produced no data")
)

// ImageCompressor интерфейс сжатия изображений
type ImageCompressor interface {
	// Compress масштабирует изображение до целевой ширины и перекодирует в JPEG.
	// PreviewID в результате не заполняется.
	Compress(ctx context.Context, img *entity.SelectedImage) (*entity.CompressedImage, error)
}
