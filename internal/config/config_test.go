package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HOST", "PORT", "MODEL_PATH", "ONNXRUNTIME_LIB", "MODEL_POOL_SIZE", "IMAGE_SIZE", "MAX_UPLOAD_MB", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "models/breastcancer_model.onnx", cfg.ModelPath)
	assert.Equal(t, 2, cfg.PoolSize)
	assert.Equal(t, 64, cfg.ImageSize)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8081")
	t.Setenv("MODEL_PATH", "/srv/model.onnx")
	t.Setenv("MODEL_POOL_SIZE", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "127.0.0.1:8081", cfg.Addr())
	assert.Equal(t, "/srv/model.onnx", cfg.ModelPath)
	assert.Equal(t, 4, cfg.PoolSize)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MODEL_POOL_SIZE", "zero")
	t.Setenv("IMAGE_SIZE", "-3")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()

	assert.Equal(t, 2, cfg.PoolSize)
	assert.Equal(t, 64, cfg.ImageSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Len(t, cfg.Warnings, 3)
}
