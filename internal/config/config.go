// Package config loads service configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds the service configuration. Cloud integrations are
// disabled when their bucket/stream names are left empty.
type Config struct {
	Addr           string
	CameraID       int
	ModelDir       string
	DBPath         string
	SavedFramesDir string

	S3Bucket      string
	KinesisStream string
	AWSRegion     string

	LogLevel slog.Level
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for anything unset.
func FromEnv() Config {
	return Config{
		Addr:           envString("FRAMESIGHT_ADDR", ":8080"),
		CameraID:       envInt("FRAMESIGHT_CAMERA_ID", 0),
		ModelDir:       envString("FRAMESIGHT_MODEL_DIR", "models"),
		DBPath:         envString("FRAMESIGHT_DB_PATH", "framesight.db"),
		SavedFramesDir: envString("FRAMESIGHT_SAVED_FRAMES_DIR", "saved_frames"),
		S3Bucket:       os.Getenv("S3_BUCKET_NAME"),
		KinesisStream:  os.Getenv("KINESIS_STREAM_NAME"),
		AWSRegion:      envString("AWS_REGION", "us-east-1"),
		LogLevel:       envLevel("FRAMESIGHT_LOG_LEVEL", slog.LevelInfo),
	}
}

// CloudStorageEnabled reports whether frame uploads are configured.
func (c Config) CloudStorageEnabled() bool {
	return c.S3Bucket != ""
}

// StreamingEnabled reports whether the record sink is configured.
func (c Config) StreamingEnabled() bool {
	return c.KinesisStream != ""
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envLevel(key string, fallback slog.Level) slog.Level {
	switch strings.ToLower(os.Getenv(key)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
