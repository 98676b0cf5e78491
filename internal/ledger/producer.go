package ledger

import (
	"context"
	"log/slog"
	"time"
)

const defaultBlockInterval = time.Second

// Producer mines the mempool on a fixed interval.
type Producer struct {
	chain    *Chain
	interval time.Duration
	logger   *slog.Logger
}

func NewProducer(chain *Chain, interval time.Duration, logger *slog.Logger) *Producer {
	if interval <= 0 {
		interval = defaultBlockInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Producer{chain: chain, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. Every tick produces a block, empty or
// not, so the clock keeps moving.
func (p *Producer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.InfoContext(ctx, "block producer started", "interval", p.interval, "height", p.chain.Height())
	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "block producer stopped", "height", p.chain.Height())
			return nil
		case <-ticker.C:
			// mined transactions must not be abandoned half way on shutdown
			if _, err := p.chain.MinePending(context.WithoutCancel(ctx)); err != nil {
				p.logger.ErrorContext(ctx, "failed to mine block", "error", err)
				return err
			}
		}
	}
}
