package app

import (
	"errors"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
)

const (
	MsgNoFile       = "Please choose a photo of a date fruit."
	MsgNoImage      = "Please upload a date image before submitting."
	MsgBusy         = "Finish or clear the current request first."
	MsgUnreadable   = "Could not read this image. Please try another one."
	MsgPredictError = "Could not get a prediction. Please try again."
	MsgUploadLimit  = "This file is too large to upload. Please choose a smaller image."
)

// Describe переводит ошибку формы в сообщение для пользователя.
// alert == true для ошибок проверки, которые показываются как блокирующее окно.
func Describe(err error) (text string, alert bool) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message, true
	case errors.Is(err, ErrUploadTooLarge):
		return MsgUploadLimit, true
	case errors.Is(err, ErrNoFile):
		return MsgNoFile, false
	case errors.Is(err, entity.ErrNoImage):
		return MsgNoImage, false
	case errors.Is(err, entity.ErrIllegalTransition):
		return MsgBusy, false
	case errors.Is(err, port.ErrDecode), errors.Is(err, port.ErrEmptyEncoding):
		return MsgUnreadable, false
	default:
		return MsgPredictError, false
	}
}
