package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/metrics"
)

// Submit проверяет исходный файл, отправляет сжатое изображение на
// классификацию и сохраняет результат. Флаг загрузки снимается при любом
// исходе; ошибка сервиса возвращается и остаётся в Form.LastError.
func (s *FormService) Submit(ctx context.Context, sessionID string) (*entity.Form, error) {
	s.mu.Lock()
	form, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if err := form.BeginSubmit(s.maxUpload); err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			// Ошибку проверки показываем пользователю, запрос не отправляется
			if saveErr := s.repo.Save(ctx, form); saveErr != nil {
				err = errors.Join(err, saveErr)
			}
			metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		} else {
			metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		}
		s.mu.Unlock()
		return form, err
	}
	if err := s.repo.Save(ctx, form); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	compressed := form.Compressed
	s.mu.Unlock()

	start := time.Now()
	result, predictErr := s.predictor.Predict(ctx, compressed)
	elapsed := time.Since(start)
	metrics.PredictionSeconds.Observe(elapsed.Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	// Пока форма в loading, никто другой её не меняет
	form, err = s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Join(predictErr, err)
	}

	if predictErr != nil {
		_ = form.Fail(predictErr)
		metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		s.log.Error("Prediction failed",
			zap.String("session", sessionID),
			zap.String("name", compressed.Name),
			zap.Duration("elapsed", elapsed),
			zap.Error(predictErr))
	} else {
		_ = form.Complete(result)
		metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		s.log.Info("Prediction received",
			zap.String("session", sessionID),
			zap.String("class", result.Class),
			zap.Float64("confidence", result.Confidence),
			zap.Duration("elapsed", elapsed))
	}

	if err := s.repo.Save(ctx, form); err != nil {
		return form, errors.Join(predictErr, err)
	}
	return form, predictErr
}
