//go:build !gocv
// +build !gocv

package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/nfnt/resize"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
)

// Compressor масштабирует изображение через nfnt/resize и кодирует в JPEG.
type Compressor struct {
	Width   int
	Quality int
}

// NewCompressor создаёт компрессор с целевой шириной и качеством JPEG (1..100).
func NewCompressor(width, quality int) *Compressor {
	return &Compressor{Width: width, Quality: quality}
}

// Compress декодирует изображение, приводит ширину к c.Width и перекодирует.
func (c *Compressor) Compress(ctx context.Context, img *entity.SelectedImage) (*entity.CompressedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h, err := plan(img.Data, c.Width)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrDecode, err)
	}

	resized := resize.Resize(uint(w), uint(h), src, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: c.Quality}); err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrEmptyEncoding, err)
	}
	if buf.Len() == 0 {
		return nil, port.ErrEmptyEncoding
	}

	return &entity.CompressedImage{
		Name:      img.Name,
		MediaType: entity.OutputMediaType,
		Data:      buf.Bytes(),
		Width:     w,
		Height:    h,
	}, nil
}
