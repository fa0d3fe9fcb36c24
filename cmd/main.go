package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"date-classifier/config"
	telegram "date-classifier/internal/api"
	"date-classifier/internal/api/web"
	"date-classifier/internal/container"
	"date-classifier/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("Starting date classifier",
		zap.String("predict_url", cfg.PredictURL),
		zap.Duration("predict_timeout", cfg.PredictTimeout),
		zap.Int("target_width", cfg.TargetWidth),
		zap.Int("jpeg_quality", cfg.JPEGQuality))

	// Собираем сервисы приложения
	appContainer := container.FromConfig(cfg, zl)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	var srv *web.Server
	if cfg.HTTPAddr != "" {
		srv = web.New(cfg.HTTPAddr, cfg.SessionSecret, appContainer.FormService, zl.Named("web"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zl.Error("Server failed", zap.Error(err))
				stop()
			}
		}()
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.FormService, zl.Named("bot"))
		if err != nil {
			zl.Fatal("Failed to create bot", zap.Error(err))
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			zl.Info("Bot is running...")
			if err := bot.Run(ctx); err != nil {
				zl.Error("Bot error", zap.Error(err))
			}
		}()
	}

	// Ожидание сигнала
	<-ctx.Done()
	zl.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("Server forced to shutdown", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		zl.Warn("Timed out waiting for in-flight requests")
	}

	zl.Info("Exited")
}
