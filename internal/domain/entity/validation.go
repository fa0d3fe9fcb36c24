package entity

import "fmt"

const (
	// MaxOriginalSize предельный размер исходного файла
	MaxOriginalSize int64 = 2 * 1024 * 1024

	msgInvalidType = "Please upload a valid image file (jpg, png, gif)"
	msgTooLarge    = "Uploaded file size should be less than %s"
)

var allowedMediaTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// ValidationReason причина отказа в отправке
type ValidationReason string

const (
	ReasonMediaType ValidationReason = "media_type"
	ReasonTooLarge  ValidationReason = "too_large"
)

// ValidationError ошибка проверки исходного файла перед отправкой
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsAllowedMediaType сообщает, принимается ли тип к отправке
func IsAllowedMediaType(mediaType string) bool {
	_, ok := allowedMediaTypes[mediaType]
	return ok
}

// Validate проверяет исходный файл: сначала тип, затем размер.
// maxSize <= 0 означает MaxOriginalSize.
func (s *SelectedImage) Validate(maxSize int64) error {
	if maxSize <= 0 {
		maxSize = MaxOriginalSize
	}
	if !IsAllowedMediaType(s.MediaType) {
		return &ValidationError{Reason: ReasonMediaType, Message: msgInvalidType}
	}
	if s.Size > maxSize {
		return &ValidationError{Reason: ReasonTooLarge, Message: fmt.Sprintf(msgTooLarge, sizeLabel(maxSize))}
	}
	return nil
}

// sizeLabel записывает предел так, как его показывает форма: 2097152 -> 2MB.
func sizeLabel(n int64) string {
	switch {
	case n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
