package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/wdeck/internal/app"
	"github.com/lcalzada-xor/wdeck/internal/config"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
)

func main() {
	// load config
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(2)
	}

	// Setup Structured Logging. Stdout belongs to the terminal display.
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	log.SetOutput(os.Stderr)

	// Initialize Tracing
	var traceOut io.Writer
	if cfg.Debug {
		traceOut = os.Stderr
	}
	shutdownTracer, err := telemetry.InitTracer(traceOut)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	// Initialize Application
	application, err := app.New(cfg, nil)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Root Context with cancellation on Interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("wdeck starting", "radio", cfg.Radio, "interface", cfg.Interface)

	// Restore network on exit
	defer application.RestoreNetwork()

	// Run Application
	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", "error", err)
		cancel()
	}
}
