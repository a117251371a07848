package main

import (
	"context"
	"fmt"

	"gwi.com/study-assistant/internal/config"
	"gwi.com/study-assistant/internal/core"
	"gwi.com/study-assistant/internal/logger"
	"gwi.com/study-assistant/internal/objectstore"
)

// setup loads configuration and the logger every command needs.
func setup() (*logger.Logger, error) {
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	log, err := logger.New(config.AppConfig.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return log, nil
}

func newLLMService(ctx context.Context, log *logger.Logger) (*core.LLMService, error) {
	return core.NewLLMService(ctx, log, core.LLMOptions{
		APIKey:                config.AppConfig.GeminiAPIKey,
		DefaultModel:          config.AppConfig.GeminiModel,
		TranscribeTemperature: config.AppConfig.GeminiTranscribeTemperature,
	})
}

// newObjectStore picks the backend from OBJECT_STORAGE_MODE. mediaDir is
// non-empty only for the local backend, which the router then serves.
func newObjectStore(ctx context.Context, log *logger.Logger) (store objectstore.Store, mediaDir string, closeFn func(), err error) {
	cfg := config.AppConfig
	switch cfg.ObjectStorageMode {
	case "gcs":
		gcs, err := objectstore.NewGCSStore(ctx, log, cfg.GCSBucketName, "")
		if err != nil {
			return nil, "", nil, err
		}
		return gcs, "", func() {
			if err := gcs.Close(); err != nil {
				log.Error("Error closing GCS client", "error", err)
			}
		}, nil
	default:
		disk, err := objectstore.NewDiskStore(log, cfg.LocalMediaDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", nil, err
		}
		return disk, disk.Root(), func() {}, nil
	}
}
