package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/md2docx/internal/api"
	"github.com/dgallion1/md2docx/internal/config"
	"github.com/dgallion1/md2docx/internal/convert"
	"github.com/dgallion1/md2docx/internal/metrics"
	"github.com/dgallion1/md2docx/internal/pipeline"
	_ "go.uber.org/automaxprocs"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Conversion and its instrumentation.
	collectors := metrics.NewCollectors()
	stats := metrics.NewConversionStats(cfg.StatsWindow)
	conv := convert.New(log,
		convert.WithStats(stats),
		convert.WithMetrics(collectors),
		convert.WithRawHTML(cfg.AllowRawHTML),
		convert.WithRenderTimeout(cfg.RenderTimeout),
	)

	// Async job pipeline.
	orch := pipeline.NewOrchestrator(cfg, conv, collectors, log)
	orch.Start(ctx)

	srv := api.NewServer(conv, orch, stats, collectors, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting md2docx",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"jobs_api", cfg.ConvertAPIKey != "",
		"raw_html", cfg.AllowRawHTML,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
