package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Expirer cancels pending transfers whose links have lapsed.
type Expirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

// TransferSweeper runs Expirer on a fixed interval until its context ends.
type TransferSweeper struct {
	expirer  Expirer
	interval time.Duration
	log      *zap.Logger
}

func NewTransferSweeper(expirer Expirer, interval time.Duration, log *zap.Logger) *TransferSweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &TransferSweeper{
		expirer:  expirer,
		interval: interval,
		log:      log.With(zap.String("worker", "transfer_sweeper")),
	}
}

// Run sweeps once immediately, then on every tick. It returns when ctx is done.
func (w *TransferSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Transfer sweeper started", zap.Duration("interval", w.interval))
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Transfer sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TransferSweeper) sweep(ctx context.Context) {
	n, err := w.expirer.ExpireStale(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error("Sweep failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		w.log.Info("Sweep expired transfers", zap.Int("count", n))
	}
}
