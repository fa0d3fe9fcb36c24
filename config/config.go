package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	DefaultHTTPAddr       = ":8080"
	DefaultPredictURL     = "https://backend-saudi-date.onrender.com/predicts"
	DefaultPredictTimeout = 60 * time.Second
	DefaultMaxUploadBytes = 2 * 1024 * 1024
	DefaultTargetWidth    = 800
	DefaultJPEGQuality    = 70
	DefaultLogLevel       = "info"
)

type Config struct {
	TelegramToken  string
	HTTPAddr       string
	PredictURL     string `validate:"required,url"`
	PredictTimeout time.Duration
	MaxUploadBytes int64  `validate:"gt=0"`
	TargetWidth    int    `validate:"gt=0"`
	JPEGQuality    int    `validate:"min=1,max=100"`
	LogLevel       string `validate:"oneof=debug info warn error dpanic panic fatal"`

	// SessionSecret подписывает cookie веб-сессии. Без него генерируется
	// при запуске, и сессии не переживают перезапуск.
	SessionSecret string `validate:"min=16"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:      DefaultHTTPAddr,
		PredictURL:    getString("PREDICT_URL", DefaultPredictURL),
		LogLevel:      getString("LOG_LEVEL", DefaultLogLevel),
		SessionSecret: getString("SESSION_SECRET", uuid.NewString()),
	}

	// Пустой HTTP_ADDR отключает веб-форму
	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		cfg.HTTPAddr = v
	}

	var err error
	if cfg.PredictTimeout, err = getDuration("PREDICT_TIMEOUT", DefaultPredictTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes, err = getInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes); err != nil {
		return nil, err
	}
	width, err := getInt64("TARGET_WIDTH", DefaultTargetWidth)
	if err != nil {
		return nil, err
	}
	cfg.TargetWidth = int(width)
	quality, err := getInt64("JPEG_QUALITY", DefaultJPEGQuality)
	if err != nil {
		return nil, err
	}
	cfg.JPEGQuality = int(quality)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New()

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if c.TelegramToken == "" && c.HTTPAddr == "" {
		return errors.New("either TELEGRAM_TOKEN or HTTP_ADDR is required")
	}
	if c.PredictTimeout < 0 {
		return fmt.Errorf("PREDICT_TIMEOUT must not be negative, got %s", c.PredictTimeout)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
