package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gwi.com/study-assistant/internal/api"
	"gwi.com/study-assistant/internal/config"
	"gwi.com/study-assistant/internal/core"
	"gwi.com/study-assistant/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()
		cfg := config.AppConfig

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Initialize database store
		dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbStore.Close()

		// Initialize LLM service
		llmService, err := newLLMService(ctx, log)
		if err != nil {
			return err
		}
		defer llmService.Close()

		objects, mediaDir, closeObjects, err := newObjectStore(ctx, log)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		defer closeObjects()

		synthesis := core.NewSynthesisService(log, llmService, dbStore, core.SynthesisOptions{
			Model:       cfg.GeminiModel,
			Temperature: cfg.GeminiTemperature,
		})
		voice := core.NewVoiceService(log, llmService, synthesis, objects, dbStore, core.VoiceOptions{
			Folder: cfg.VoiceFolder,
			Model:  cfg.GeminiModel,
		})
		library := core.NewLibraryService(dbStore)

		apiHandler := api.NewAPIHandler(log, dbStore, synthesis, voice, library, api.HandlerOptions{
			UploadDir:      cfg.UploadDir,
			MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		})
		router := api.NewRouter(apiHandler, api.RouterOptions{
			CORSOrigins: cfg.CORSOrigins,
			MediaDir:    mediaDir,
		})

		serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
		srv := &http.Server{
			Addr:         serverAddr,
			Handler:      router,
			ReadTimeout:  60 * time.Second, // audio uploads
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("Starting server", "addr", serverAddr, "storage_mode", cfg.ObjectStorageMode)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
			}
		}
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info("Server exiting gracefully")
		return nil
	},
}
