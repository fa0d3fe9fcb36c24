package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
	"date-classifier/internal/metrics"
)

var (
	ErrNoFile = errors.New("no file selected")

	// ErrUploadTooLarge тело запроса превысило предел транспорта, файл не получен
	ErrUploadTooLarge = errors.New("upload exceeds request size limit")
)

// Источники выбора изображения
const (
	SourceCamera  = "camera"
	SourceGallery = "gallery"
	SourceDrop    = "drop"
)

// FormService ведёт форму классификации каждой сессии.
type FormService struct {
	repo       port.FormRepository
	previews   port.PreviewStore
	compressor port.ImageCompressor
	predictor  port.Predictor
	maxUpload  int64
	log        *zap.Logger

	// mu сериализует чтение-изменение-запись формы; сжатие и запрос
	// к сервису выполняются без блокировки.
	mu sync.Mutex
}

// NewFormService создаёт сервис. maxUpload задаёт предел размера исходного файла.
func NewFormService(
	repo port.FormRepository,
	previews port.PreviewStore,
	compressor port.ImageCompressor,
	predictor port.Predictor,
	maxUpload int64,
	log *zap.Logger,
) *FormService {
	return &FormService{
		repo:       repo,
		previews:   previews,
		compressor: compressor,
		predictor:  predictor,
		maxUpload:  maxUpload,
		log:        log,
	}
}

// State возвращает текущую форму сессии
func (s *FormService) State(ctx context.Context, sessionID string) (*entity.Form, error) {
	return s.repo.Get(ctx, sessionID)
}

// Preview возвращает содержимое превью по ссылке
func (s *FormService) Preview(ctx context.Context, previewID string) ([]byte, string, error) {
	return s.previews.Get(ctx, previewID)
}

// Select сжимает выбранный файл и прикрепляет его к форме вместе с превью.
// Проверка типа и размера здесь не выполняется: она происходит при отправке.
func (s *FormService) Select(ctx context.Context, sessionID, source string, img *entity.SelectedImage) (*entity.Form, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, ErrNoFile
	}

	// Не тратим время на сжатие, если выбор сейчас недопустим
	form, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := form.CheckSelect(); err != nil {
		return form, err
	}

	start := time.Now()
	compressed, err := s.compressor.Compress(ctx, img)
	metrics.CompressionSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Warn("Failed to compress image",
			zap.String("session", sessionID),
			zap.String("name", img.Name),
			zap.String("media_type", img.MediaType),
			zap.Error(err))
		return form, fmt.Errorf("compress image: %w", err)
	}

	previewID, err := s.previews.Acquire(ctx, compressed.Data, compressed.MediaType)
	if err != nil {
		return form, fmt.Errorf("acquire preview: %w", err)
	}
	compressed.PreviewID = previewID

	// Для проверки при отправке нужны только тип и размер исходника
	meta := *img
	if meta.Size == 0 {
		meta.Size = int64(len(img.Data))
	}
	meta.Data = nil

	s.mu.Lock()
	form, err = s.repo.Get(ctx, sessionID)
	if err != nil {
		s.mu.Unlock()
		s.release(ctx, previewID)
		return nil, err
	}
	superseded, err := form.Attach(&meta, compressed)
	if err == nil {
		err = s.repo.Save(ctx, form)
	}
	s.mu.Unlock()

	if err != nil {
		s.release(ctx, previewID)
		return form, err
	}
	s.release(ctx, superseded)

	metrics.SelectionsTotal.WithLabelValues(source).Inc()
	s.log.Info("Image selected",
		zap.String("session", sessionID),
		zap.String("source", source),
		zap.String("name", img.Name),
		zap.Int64("original_size", img.Size),
		zap.Int64("compressed_size", compressed.Size()),
		zap.Int("width", compressed.Width),
		zap.Int("height", compressed.Height))

	return form, nil
}

// Clear сбрасывает форму и освобождает превью. Во время запроса недоступно.
func (s *FormService) Clear(ctx context.Context, sessionID string) (*entity.Form, error) {
	s.mu.Lock()
	form, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	released, err := form.Clear()
	if err == nil {
		// Очищенная форма совпадает с новой, хранить её незачем
		err = s.repo.Delete(ctx, sessionID)
	}
	s.mu.Unlock()

	if err != nil {
		return form, err
	}
	s.release(ctx, released)

	s.log.Debug("Form cleared", zap.String("session", sessionID))
	return form, nil
}

func (s *FormService) release(ctx context.Context, previewID string) {
	if previewID == "" {
		return
	}
	if err := s.previews.Release(ctx, previewID); err != nil {
		s.log.Warn("Failed to release preview", zap.String("preview", previewID), zap.Error(err))
	}
}
