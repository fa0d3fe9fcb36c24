package predictor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
)

// FieldName имя multipart-поля с изображением
const FieldName = "file"

// maxErrorBody ограничивает тело ответа, сохраняемое в StatusError
const maxErrorBody = 512

var ErrMalformedResponse = errors.New("malformed prediction response")

// StatusError ответ сервиса с кодом, отличным от 200
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prediction service returned status %d", e.Code)
}

// HTTPPredictor отправляет изображение на удалённый /predicts
type HTTPPredictor struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// NewHTTPPredictor создаёт клиент. timeout == 0 отключает таймаут.
func NewHTTPPredictor(endpoint string, timeout time.Duration, log *zap.Logger) *HTTPPredictor {
	return &HTTPPredictor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

// Predict отправляет одно поле file и разбирает {"class", "confidence"}.
func (p *HTTPPredictor) Predict(ctx context.Context, img *entity.CompressedImage) (*entity.PredictionResult, error) {
	body, contentType, err := buildBody(img)
	if err != nil {
		return nil, fmt.Errorf("build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	p.log.Debug("Prediction response received",
		zap.String("endpoint", p.endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	return parseResult(data)
}

func buildBody(img *entity.CompressedImage) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldName, fileName(img)))
	header.Set("Content-Type", img.MediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

func fileName(img *entity.CompressedImage) string {
	if img.Name == "" {
		return "image.jpg"
	}
	return img.Name
}

func parseResult(data []byte) (*entity.PredictionResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}

	class := gjson.GetBytes(data, "class")
	if class.Type != gjson.String {
		return nil, fmt.Errorf("%w: class is missing or not a string", ErrMalformedResponse)
	}

	confidence := gjson.GetBytes(data, "confidence")
	if confidence.Type != gjson.Number {
		return nil, fmt.Errorf("%w: confidence is missing or not a number", ErrMalformedResponse)
	}
	value := confidence.Float()
	if value < 0 || value > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of [0,1]", ErrMalformedResponse, value)
	}

	return &entity.PredictionResult{
		Class:      class.String(),
		Confidence: value,
	}, nil
}

var _ port.Predictor = (*HTTPPredictor)(nil)
