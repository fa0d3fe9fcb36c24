package container

import (
	"go.uber.org/zap"

	"date-classifier/config"
	app "date-classifier/internal/application"
	"date-classifier/internal/domain/port"
	"date-classifier/internal/infrastructure/imaging"
	"date-classifier/internal/infrastructure/predictor"
	"date-classifier/internal/infrastructure/storage"
)

type Container struct {
	FormService *app.FormService
}

func New(repo port.FormRepository, previews port.PreviewStore, compressor port.ImageCompressor, predictor port.Predictor, maxUpload int64, log *zap.Logger) *Container {
	formService := app.NewFormService(repo, previews, compressor, predictor, maxUpload, log)

	return &Container{
		FormService: formService,
	}
}

// FromConfig собирает контейнер с in-memory хранилищами и HTTP-клиентом классификатора.
func FromConfig(cfg *config.Config, log *zap.Logger) *Container {
	return New(
		storage.NewMemoryFormRepository(),
		storage.NewMemoryPreviewStore(),
		imaging.NewCompressor(cfg.TargetWidth, cfg.JPEGQuality),
		predictor.NewHTTPPredictor(cfg.PredictURL, cfg.PredictTimeout, log.Named("predictor")),
		cfg.MaxUploadBytes,
		log.Named("form"),
	)
}
