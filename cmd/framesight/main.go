package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/asengupta/framesight/internal/analysis"
	"github.com/asengupta/framesight/internal/app"
	"github.com/asengupta/framesight/internal/capture"
	"github.com/asengupta/framesight/internal/cloud"
	"github.com/asengupta/framesight/internal/config"
	"github.com/asengupta/framesight/internal/server"
	"github.com/asengupta/framesight/internal/store"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	logger.Info("starting framesight", "addr", cfg.Addr, "camera", cfg.CameraID)

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory", "error", err)
			os.Exit(1)
		}
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()

	var publisher *cloud.Publisher
	if cfg.StreamingEnabled() {
		sink, err := cloud.NewKinesisSink(ctx, cfg.KinesisStream, cfg.AWSRegion)
		if err != nil {
			logger.Error("failed to initialize record sink", "error", err)
			os.Exit(1)
		}
		publisher = cloud.NewPublisher(sink, "framesight", logger)
		logger.Info("record streaming enabled", "stream", cfg.KinesisStream)
	}

	var uploader *cloud.Uploader
	if cfg.CloudStorageEnabled() {
		objects, err := cloud.NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			logger.Error("failed to initialize object store", "error", err)
			os.Exit(1)
		}
		uploader = cloud.NewUploader(objects, logger)
		logger.Info("cloud storage enabled", "bucket", cfg.S3Bucket)
	}

	analyzer := analysis.New(analysis.Config{
		ModelDir: cfg.ModelDir,
		Logger:   logger,
	})

	pipeline := app.New(app.Config{
		Source:         capture.NewCamera(cfg.CameraID),
		Analyzer:       analyzer,
		Publisher:      publisher,
		Uploader:       uploader,
		Store:          st,
		SavedFramesDir: cfg.SavedFramesDir,
		ModelDir:       cfg.ModelDir,
		Logger:         logger,
	})
	defer pipeline.Close()

	srv := server.New(server.Config{
		StaticDir: findWebDir(),
		Store:     st,
		App:       pipeline,
		Logger:    logger,
	})

	logger.Info("server listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(cfg.Addr); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// findWebDir searches for the web directory in common locations and
// returns the first existing directory, or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}
