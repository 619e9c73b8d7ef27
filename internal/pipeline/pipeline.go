// Package pipeline wires the Kafka ingestion path: consumer → envelope
// parser → ingester feeding the session registry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/analysis"
	"github.com/procsight/procsight/internal/config"
	"github.com/procsight/procsight/internal/telemetry"
)

// Pipeline orchestrates the ingestion stages: consuming raw messages,
// parsing them into telemetry envelopes and routing them into the registry.
type Pipeline struct {
	cfg      config.KafkaConfig
	consumer *Consumer
	ingester *Ingester
	logger   *zap.Logger

	rawMessages chan []byte
	envelopes   chan telemetry.Envelope
}

// New creates and wires up a new ingestion pipeline.
func New(cfg config.KafkaConfig, registry *analysis.Registry, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	const channelBufferSize = 100
	rawMessages := make(chan []byte, channelBufferSize)
	envelopes := make(chan telemetry.Envelope, channelBufferSize)

	consumer, err := NewConsumer(cfg, rawMessages, logger.Named("consumer"))
	if err != nil {
		initLogger.Error("Failed to create consumer", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
	}

	ingester := NewIngester(registry, envelopes, logger.Named("ingester"))

	p := &Pipeline{
		cfg:         cfg,
		consumer:    consumer,
		ingester:    ingester,
		logger:      logger.Named("pipeline"),
		rawMessages: rawMessages,
		envelopes:   envelopes,
	}

	initLogger.Info("Ingestion pipeline created")
	return p, nil
}

// Run starts all pipeline stages and waits for them to complete or for
// context cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	var wg sync.WaitGroup
	pipelineErr := make(chan error, 3)

	sugar.Info("Pipeline Run: Starting stages...")

	wg.Add(3)
	go p.runConsumer(ctx, &wg, pipelineErr)
	go p.runParser(ctx, &wg)
	go p.runIngester(ctx, &wg, pipelineErr)

	var firstErr error
	select {
	case <-ctx.Done():
		sugar.Info("Pipeline Run: Context cancelled. Waiting for stages to finish...")
		firstErr = ctx.Err()
	case err := <-pipelineErr:
		sugar.Errorw("Pipeline Run: Received error from a stage, initiating shutdown...", zap.Error(err))
		firstErr = err
	}

	wg.Wait()
	sugar.Info("Pipeline Run: All stages finished.")

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

// runConsumer executes the consumer stage in a goroutine.
func (p *Pipeline) runConsumer(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer func() {
		close(p.rawMessages)
		p.logger.Debug("Raw messages channel closed")
	}()

	if err := p.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Consumer stage exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrConsumerRunFailed, err)
	}
}

// runParser decodes raw messages into telemetry envelopes, skipping
// malformed ones.
func (p *Pipeline) runParser(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		close(p.envelopes)
		p.logger.Debug("Envelope channel closed")
	}()

	parserLogger := p.logger.Named("parser").Sugar()

	for {
		select {
		case rawMsg, ok := <-p.rawMessages:
			if !ok {
				parserLogger.Debug("Parser finished (raw message channel closed).")
				return
			}

			env, err := telemetry.ParseEnvelope(rawMsg)
			if err != nil {
				parserLogger.Warnw("Failed to parse envelope, skipping", zap.Error(err))
				continue
			}

			select {
			case p.envelopes <- env:

			case <-ctx.Done():
				parserLogger.Debug("Parser context cancelled during send.", zap.Error(ctx.Err()))
				return
			}

		case <-ctx.Done():
			parserLogger.Debug("Parser context cancelled while waiting for raw message.", zap.Error(ctx.Err()))
			return
		}
	}
}

// runIngester executes the ingester stage in a goroutine.
func (p *Pipeline) runIngester(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()

	if err := p.ingester.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Ingester stage exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrIngesterRunFailed, err)
	}
}
