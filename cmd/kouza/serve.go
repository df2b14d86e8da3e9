package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/harunnryd/kouza/internal/config"
	"github.com/harunnryd/kouza/internal/server"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  `Index the configured docs folder and serve the question answering API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		system, closeStore, err := buildSystem(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Docs.Path != "" {
			if _, statErr := os.Stat(cfg.Docs.Path); statErr == nil {
				courses, chunks, ingestErr := system.IngestFolder(ctx, cfg.Docs.Path, false)
				if ingestErr != nil {
					return ingestErr
				}
				slog.Info("Startup ingest complete", "courses", courses, "chunks", chunks)
			} else {
				slog.Warn("Docs folder not found, serving existing index", "path", cfg.Docs.Path)
			}
		}

		var scheduler *cron.Cron
		if cfg.Docs.ReindexSchedule != "" {
			scheduler = cron.New()
			_, err := scheduler.AddFunc(cfg.Docs.ReindexSchedule, func() {
				courses, chunks, err := system.IngestFolder(context.Background(), cfg.Docs.Path, cfg.Docs.ClearOnReingest)
				if err != nil {
					slog.Error("Scheduled reindex failed", "error", err)
					return
				}
				slog.Info("Scheduled reindex complete", "courses", courses, "chunks", chunks)
			})
			if err != nil {
				return fmt.Errorf("invalid reindex schedule %q: %w", cfg.Docs.ReindexSchedule, err)
			}
			scheduler.Start()
			slog.Info("Reindex scheduler started", "schedule", cfg.Docs.ReindexSchedule)
		}

		readTimeout, err := config.DurationOrDefault(cfg.Server.ReadTimeout, config.DefaultServerReadTimeout)
		if err != nil {
			return fmt.Errorf("server read timeout: %w", err)
		}
		writeTimeout, err := config.DurationOrDefault(cfg.Server.WriteTimeout, config.DefaultServerWriteTimeout)
		if err != nil {
			return fmt.Errorf("server write timeout: %w", err)
		}
		idleTimeout, err := config.DurationOrDefault(cfg.Server.IdleTimeout, config.DefaultServerIdleTimeout)
		if err != nil {
			return fmt.Errorf("server idle timeout: %w", err)
		}
		shutdownTimeout, err := config.DurationOrDefault(cfg.Server.ShutdownTimeout, config.DefaultServerShutdownTimeout)
		if err != nil {
			return fmt.Errorf("server shutdown timeout: %w", err)
		}

		srv := server.New(server.Config{
			Port:         cfg.Server.Port,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		}, system)
		srv.Start()

		<-ctx.Done()
		slog.Info("Shutting down")

		if scheduler != nil {
			scheduler.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
