package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Host        string
	Port        string
	ModelPath   string
	RuntimeLib  string
	PoolSize    int
	ImageSize   int
	MaxUploadMB int
	LogLevel    slog.Level
	Warnings    []string
}

func Load() *Config {
	cfg := &Config{
		Host:       getEnv("HOST", "0.0.0.0"),
		Port:       getEnv("PORT", "5000"),
		ModelPath:  getEnv("MODEL_PATH", "models/breastcancer_model.onnx"),
		RuntimeLib: getEnv("ONNXRUNTIME_LIB", ""),
	}

	cfg.PoolSize = cfg.getPositiveInt("MODEL_POOL_SIZE", 2)
	cfg.ImageSize = cfg.getPositiveInt("IMAGE_SIZE", 64)
	cfg.MaxUploadMB = cfg.getPositiveInt("MAX_UPLOAD_MB", 16)
	cfg.LogLevel = cfg.getLevel("LOG_LEVEL", slog.LevelInfo)

	return cfg
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// MaxUploadBytes is the in-memory limit handed to ParseMultipartForm.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c *Config) getPositiveInt(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q, using %d", key, raw, defaultVal))
		return defaultVal
	}
	return n
}

func (c *Config) getLevel(key string, defaultVal slog.Level) slog.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(raw))); err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q, using %s", key, raw, defaultVal))
		return defaultVal
	}
	return level
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
