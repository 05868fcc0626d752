package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/bcd-api/internal/config"
	"github.com/Brownie44l1/bcd-api/internal/handlers"
	"github.com/Brownie44l1/bcd-api/internal/metrics"
	"github.com/Brownie44l1/bcd-api/internal/model"
	"github.com/Brownie44l1/bcd-api/internal/preprocess"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn("config", "msg", w)
	}

	// A failed load leaves the service up with the model absent.
	var classifier handlers.Classifier
	logger.Info("loading model", "path", cfg.ModelPath)
	m, err := model.Load(model.Options{
		Path:       cfg.ModelPath,
		RuntimeLib: cfg.RuntimeLib,
		PoolSize:   cfg.PoolSize,
		ImageSize:  cfg.ImageSize,
	})
	if err != nil {
		logger.Error("error loading model", "path", cfg.ModelPath, "err", err)
	} else {
		defer m.Close()
		classifier = m
		meta := m.Metadata()
		logger.Info("model loaded",
			"input", meta.InputName,
			"input_shape", meta.InputShape,
			"output", meta.OutputName,
			"output_shape", meta.OutputShape,
			"sessions", cfg.PoolSize,
		)
		if size := m.InputSize(); size != preprocess.Square(cfg.ImageSize) {
			logger.Warn("model input size differs from IMAGE_SIZE, using the model's",
				"model_height", size.Height, "model_width", size.Width, "image_size", cfg.ImageSize)
		}
	}
	metrics.SetModelLoaded(classifier != nil)

	h := handlers.NewHandler(classifier, preprocess.Square(cfg.ImageSize), cfg.MaxUploadBytes(), logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr())
		logger.Info("endpoints", "health", "GET /health", "predict", "POST /predict", "metrics", "GET /metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			if m != nil {
				m.Close()
			}
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("error during shutdown", "err", err)
		}
	}
}
