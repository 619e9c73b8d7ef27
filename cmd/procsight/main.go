package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/procsight/procsight/internal/analysis"
	"github.com/procsight/procsight/internal/config"
	"github.com/procsight/procsight/internal/logging"
	"github.com/procsight/procsight/internal/pipeline"
	"github.com/procsight/procsight/internal/server"
	"github.com/procsight/procsight/internal/store"
)

var (
	configFile = flag.String("config", "configs/config.dev.yaml", "Path to the configuration file")
	logger     *zap.Logger
)

func main() {
	// Initialize Configuration
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}

	// Initialize Logger
	var logErr error
	logger, logErr = logging.NewLogger(cfg.Log)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", logErr)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Logger initialized",
		"level", cfg.Log.Level,
		"format", cfg.Log.Format,
	)
	sugar.Infow("Configuration loaded successfully", "path", *configFile)

	// Initialize Storage and Registry
	st, err := store.New(cfg.Storage)
	if err != nil {
		sugar.Fatalw("Failed to initialize storage backend", "error", err)
	}
	sugar.Infow("Storage backend initialized", "backend", cfg.Storage.Backend)

	registry := analysis.NewRegistry(st, cfg.Session.MaxSamples, logger.Named("registry"))

	// Initialize HTTP server and, when enabled, the Kafka ingestion pipeline
	srv := server.New(cfg.Server, registry, logger.Named("server"))

	var pipe *pipeline.Pipeline
	if cfg.Kafka.Enabled {
		pipe, err = pipeline.New(cfg.Kafka, registry, logger)
		if err != nil {
			sugar.Fatalw("Failed to initialize ingestion pipeline", "error", err)
		}
		sugar.Info("Kafka ingestion pipeline initialized")
	} else {
		sugar.Info("Kafka ingestion disabled; batches accepted over HTTP only")
	}

	// Handle Graceful Shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		sugar.Infow("Received signal, initiating shutdown...", "signal", sig.String())
		cancel()
	}()

	// Run Components
	runErrs := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			runErrs <- err
			cancel()
		}
	}()

	if pipe != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pipe.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				runErrs <- err
				cancel()
			}
		}()
	}

	wg.Wait()
	close(runErrs)
	runErr := <-runErrs

	// Evaluate Result
	finalLogLevel := zapcore.InfoLevel
	shutdownReason := "gracefully"
	var finalErrorField = zap.Skip()

	if runErr != nil {
		shutdownReason = "due to error"
		finalLogLevel = zapcore.ErrorLevel
		finalErrorField = zap.Error(runErr)
		sugar.Errorw("Service stopped unexpectedly", zap.Error(runErr))
	}

	finalMessage := fmt.Sprintf("Service shutdown %s.", shutdownReason)
	logger.Log(finalLogLevel, finalMessage,
		zap.String("reason", shutdownReason),
		finalErrorField,
	)

	sugar.Info("procsight finished.")
}
