//go:build gocv
// +build gocv

package imaging

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
)

// Compressor масштабирует изображение через OpenCV и кодирует в JPEG.
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

	// Заголовок проверяется до того, как OpenCV выделит память под пиксели
	if _, _, err := plan(img.Data, c.Width); err != nil {
		return nil, err
	}

	mat, err := decodeToMat(img.Data)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// OpenCV поворачивает JPEG по EXIF, поэтому размер берётся из матрицы
	w, h := TargetSize(mat.Cols(), mat.Rows(), c.Width)
	if err := checkTarget(w, h); err != nil {
		return nil, err
	}

	// Уменьшаем через InterpolationArea, увеличиваем линейной интерполяцией.
	interp := gocv.InterpolationArea
	if w > mat.Cols() {
		interp = gocv.InterpolationLinear
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(w, h), 0, 0, interp)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, resized, []int{int(gocv.IMWriteJpegQuality), c.Quality})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrEmptyEncoding, err)
	}
	defer buf.Close()

	encoded := buf.GetBytes()
	if len(encoded) == 0 {
		return nil, port.ErrEmptyEncoding
	}

	return &entity.CompressedImage{
		Name:      img.Name,
		MediaType: entity.OutputMediaType,
		Data:      append([]byte(nil), encoded...),
		Width:     w,
		Height:    h,
	}, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	mat.Close()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %w", port.ErrDecode, err)
	}
	return gocv.NewMat(), port.ErrDecode
}
