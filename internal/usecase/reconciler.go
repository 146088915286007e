package usecase

import (
	"context"
	"time"

	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/entity"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/messaging"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/repository"
	"go.uber.org/zap"
)

// Reconciler re-derives work-queue events for listings stuck in processing.
// Because the create flow publishes fire-and-forget, a listing can exist
// with its image job lost; anything still processing past the staleness
// threshold gets its job republished. The queue is at-least-once anyway, so
// the occasional duplicate job is harmless.
type Reconciler struct {
	listingRepo repository.ListingRepository
	queue       messaging.QueuePublisher
	interval    time.Duration
	staleSkew   time.Duration
	batchSize   int
	logger      *zap.Logger
}

func NewReconciler(
	lr repository.ListingRepository,
	qp messaging.QueuePublisher,
	interval, staleSkew time.Duration,
	batchSize int,
	log *zap.Logger,
) *Reconciler {
	return &Reconciler{
		listingRepo: lr,
		queue:       qp,
		interval:    interval,
		staleSkew:   staleSkew,
		batchSize:   batchSize,
		logger:      log,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Reconciler started",
		zap.Duration("interval", r.interval),
		zap.Duration("stale_skew", r.staleSkew),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reconciler stopped")
			return
		case <-ticker.C:
			r.ReconcileOnce(ctx)
		}
	}
}

// ReconcileOnce runs a single reconciliation pass.
func (r *Reconciler) ReconcileOnce(ctx context.Context) {
	cutoff := time.Now().Add(-r.staleSkew)
	stale, err := r.listingRepo.FindStaleProcessing(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("Reconciler failed to query stale listings", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	r.logger.Info("Reconciler found listings stuck in processing", zap.Int("count", len(stale)))
	for _, listing := range stale {
		job := entity.ImageJob{
			Filename:  listing.ImageName,
			ListingID: listing.ID,
		}
		if err := r.queue.PublishImageJob(ctx, job); err != nil {
			r.logger.Warn("Reconciler failed to republish image job",
				zap.Error(err),
				zap.String("listing_id", listing.ID),
			)
			continue
		}
		r.logger.Info("Republished image job for stale listing",
			zap.String("listing_id", listing.ID),
			zap.String("image_name", listing.ImageName),
		)
	}
}
