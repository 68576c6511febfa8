package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// GenerationReaperJobName is the name of the stuck generation reaper job
const GenerationReaperJobName = "generation_reaper"

// ImageStatusReaper marks receipt generations stuck in the generating
// state as failed so they become retryable again. Rows end up stuck when
// the process dies between persisting the generating state and writing
// the outcome.
type ImageStatusReaper interface {
	// ReapStuckGenerating flips rows that entered the generating state
	// before the cutoff back to the error state. Returns the number of
	// rows affected.
	ReapStuckGenerating(ctx context.Context, cutoff time.Time) (int64, error)
}

// GenerationReaperJob periodically sweeps service orders and quotes for
// generations that never finished.
type GenerationReaperJob struct {
	orders  ImageStatusReaper
	quotes  ImageStatusReaper
	logger  *zap.Logger
	maxAge  time.Duration
	timeout time.Duration
}

// NewGenerationReaperJob creates the reaper. maxAge controls how long a
// row may sit in the generating state before it is considered orphaned.
func NewGenerationReaperJob(orders, quotes ImageStatusReaper, logger *zap.Logger, maxAge time.Duration) *GenerationReaperJob {
	return &GenerationReaperJob{
		orders:  orders,
		quotes:  quotes,
		logger:  logger,
		maxAge:  maxAge,
		timeout: 30 * time.Second,
	}
}

// Run executes one sweep. Called by the scheduler.
func (j *GenerationReaperJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.maxAge)

	ordersReaped, err := j.orders.ReapStuckGenerating(ctx, cutoff)
	if err != nil {
		j.logger.Error("service order generation sweep failed", zap.Error(err))
	}

	quotesReaped, err := j.quotes.ReapStuckGenerating(ctx, cutoff)
	if err != nil {
		j.logger.Error("quote generation sweep failed", zap.Error(err))
	}

	if ordersReaped > 0 || quotesReaped > 0 {
		j.logger.Info("reaped stuck image generations",
			zap.Int64("service_orders", ordersReaped),
			zap.Int64("quotes", quotesReaped),
			zap.Time("cutoff", cutoff))
	}
}

// RegisterGenerationReaperJob registers the reaper with the scheduler.
func RegisterGenerationReaperJob(scheduler *Scheduler, orders, quotes ImageStatusReaper, logger *zap.Logger, cronExpr string, maxAge time.Duration) error {
	job := NewGenerationReaperJob(orders, quotes, logger, maxAge)
	return scheduler.AddJob(GenerationReaperJobName, cronExpr, job.Run)
}
