package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"date-classifier/internal/domain/port"
)

const (
	// MaxPixels ограничивает площадь как исходного, так и масштабированного изображения
	MaxPixels = 50_000_000

	// MaxJPEGDimension предел стороны изображения в формате JPEG
	MaxJPEGDimension = 65535
)

// TargetSize вычисляет размер после масштабирования к ширине targetWidth.
// Ширина всегда равна targetWidth, в том числе для маленьких изображений;
// высота сохраняет пропорции и отбрасывает дробную часть.
func TargetSize(width, height, targetWidth int) (int, int) {
	if width <= 0 || height <= 0 {
		return targetWidth, 1
	}
	h := height * targetWidth / width
	if h < 1 {
		h = 1
	}
	return targetWidth, h
}

// plan читает только заголовок изображения и возвращает размер результата.
// Изображения, которые нельзя декодировать или закодировать в пределах
// MaxPixels и MaxJPEGDimension, отклоняются до выделения памяти под пиксели.
func plan(data []byte, targetWidth int) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", port.ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%w: empty image %dx%d", port.ErrDecode, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return 0, 0, fmt.Errorf("%w: source %dx%d exceeds %d pixels", port.ErrDecode, cfg.Width, cfg.Height, MaxPixels)
	}

	w, h := TargetSize(cfg.Width, cfg.Height, targetWidth)
	if err := checkTarget(w, h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// checkTarget проверяет, что результат масштабирования можно закодировать.
func checkTarget(w, h int) error {
	if w > MaxJPEGDimension || h > MaxJPEGDimension {
		return fmt.Errorf("%w: target %dx%d exceeds JPEG limit %d", port.ErrEmptyEncoding, w, h, MaxJPEGDimension)
	}
	if int64(w)*int64(h) > MaxPixels {
		return fmt.Errorf("%w: target %dx%d exceeds %d pixels", port.ErrEmptyEncoding, w, h, MaxPixels)
	}
	return nil
}
