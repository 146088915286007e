package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/config"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher pushes image jobs onto a JetStream stream. JetStream gives the
// resize pipeline at-least-once delivery; this side only has to get the
// publish accepted.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	logger  *zap.Logger
}

func NewPublisher(cfg *config.NATSConfig, logger *zap.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.ConnectTimeout),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(cfg.Stream); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			nc.Close()
			return nil, fmt.Errorf("failed to look up stream %s: %w", cfg.Stream, err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      cfg.Stream,
			Subjects:  []string{cfg.Subject},
			Retention: nats.WorkQueuePolicy,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
		}
		logger.Info("Created JetStream work-queue stream",
			zap.String("stream", cfg.Stream),
			zap.String("subject", cfg.Subject),
		)
	}

	logger.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return &Publisher{nc: nc, js: js, subject: cfg.Subject, logger: logger}, nil
}

func (p *Publisher) PublishImageJob(ctx context.Context, job entity.ImageJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal image job for %s: %w", p.subject, err)
	}

	if _, err := p.js.Publish(p.subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish image job to %s: %w", p.subject, err)
	}
	p.logger.Info("Published image job",
		zap.String("subject", p.subject),
		zap.String("listing_id", job.ListingID),
		zap.String("filename", job.Filename),
	)
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			p.logger.Error("Error draining NATS connection", zap.Error(err))
		}
		p.nc.Close()
	}
}
