package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/usecase"
)

const defaultBatchSize = 50

type PriceSyncer interface {
	SyncPendingPrices(ctx context.Context, limit int) (usecase.PriceSyncResult, error)
}

// PriceSyncWorker periodically retries the Stripe mirror of prices that were
// stored while Stripe was unreachable.
type PriceSyncWorker struct {
	syncer       PriceSyncer
	batchSize    int
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewPriceSyncWorker(syncer PriceSyncer, tickInterval time.Duration, logger *zap.Logger) *PriceSyncWorker {
	return &PriceSyncWorker{
		syncer:       syncer,
		batchSize:    defaultBatchSize,
		tickInterval: tickInterval,
		logger:       logger,
	}
}

func (w *PriceSyncWorker) Start(ctx context.Context) {
	w.logger.Info("price sync worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("price sync worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *PriceSyncWorker) runOnce(ctx context.Context) {
	res, err := w.syncer.SyncPendingPrices(ctx, w.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("price sync run failed", zap.Error(err))
		}
		return
	}
	if res.Synced > 0 || res.Failed > 0 {
		w.logger.Info("price sync run finished",
			zap.Int("synced", res.Synced),
			zap.Int("failed", res.Failed),
		)
	}
}
