package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/analysis"
	"github.com/procsight/procsight/internal/telemetry"
)

// Ingester drains parsed telemetry envelopes into the session registry.
// Per-envelope failures are logged and skipped; only context cancellation
// stops the loop.
type Ingester struct {
	registry *analysis.Registry
	input    <-chan telemetry.Envelope
	logger   *zap.Logger
}

func NewIngester(registry *analysis.Registry, input <-chan telemetry.Envelope, logger *zap.Logger) *Ingester {
	return &Ingester{
		registry: registry,
		input:    input,
		logger:   logger,
	}
}

// Run starts the ingester's processing loop.
func (i *Ingester) Run(ctx context.Context) error {
	sugar := i.logger.Sugar()
	sugar.Info("Starting ingester loop...")
	defer sugar.Info("Ingester loop stopped.")

	for {
		select {
		case env, ok := <-i.input:
			if !ok {
				sugar.Info("Ingester input channel closed.")
				return nil
			}
			if err := i.registry.Ingest(env.SessionID, env.Series); err != nil {
				sugar.Warnw("Failed to ingest batch, skipping",
					zap.String("session_id", env.SessionID),
					zap.Int("samples", len(env.Series)),
					zap.Error(err),
				)
				continue
			}
			sugar.Debugw("Ingested batch",
				zap.String("session_id", env.SessionID),
				zap.Int("samples", len(env.Series)),
			)

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping ingester.")
			return ctx.Err()
		}
	}
}
