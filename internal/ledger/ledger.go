// Package ledger hosts the registry: it owns the logical clock, executes
// transactions in blocks and hands back receipts.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
)

var tracer = otel.Tracer("ledgerpass/ledger")

// Executor applies one operation as one atomic transaction.
type Executor interface {
	Apply(ctx context.Context, inv models.Invocation, op models.Operation) error
}

// TipStore persists the clock. The chain saves a block's height before
// executing it, so no committed row can carry a height above the stored tip.
type TipStore interface {
	LoadTip(ctx context.Context) (domain.Height, error)
	SaveTip(ctx context.Context, height domain.Height) error
}

// Tx is a signed call waiting to be mined.
type Tx struct {
	Sender    domain.Principal
	Operation models.Operation
}

// Receipt is the outcome of one transaction. Code is the stable registry
// error code, or 0 when OK or when the failure is outside the taxonomy.
type Receipt struct {
	Height    domain.Height    `json:"height"`
	Index     int              `json:"index"`
	Operation string           `json:"operation"`
	Sender    domain.Principal `json:"sender"`
	OK        bool             `json:"ok"`
	Code      uint32           `json:"code,omitempty"`
	Error     string           `json:"error,omitempty"`

	err error
}

// Err returns the error the transaction failed with, if any.
func (r Receipt) Err() error {
	return r.err
}

type Block struct {
	Height   domain.Height `json:"height"`
	MinedAt  time.Time     `json:"mined_at"`
	Receipts []Receipt     `json:"receipts"`
}

type pendingTx struct {
	tx   Tx
	done chan Receipt
}

// Chain executes blocks strictly one at a time. Within a block transactions
// run in submission order and each commits or fails on its own.
type Chain struct {
	exec     Executor
	tips     TipStore
	logger   *slog.Logger
	metrics  *Metrics
	autoMine bool

	blockMu sync.Mutex
	height  atomic.Uint64

	poolMu  sync.Mutex
	mempool []pendingTx
}

type Option func(*Chain)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Chain) {
		c.metrics = m
	}
}

// WithGenesisHeight sets the tip height before the first block.
func WithGenesisHeight(h domain.Height) Option {
	return func(c *Chain) {
		c.height.Store(uint64(h))
	}
}

// WithTipStore persists every new tip height to tips.
func WithTipStore(tips TipStore) Option {
	return func(c *Chain) {
		c.tips = tips
	}
}

// WithAutoMine mines every submitted transaction in its own block
// immediately instead of waiting for a producer.
func WithAutoMine(enabled bool) Option {
	return func(c *Chain) {
		c.autoMine = enabled
	}
}

func New(exec Executor, opts ...Option) *Chain {
	c := &Chain{
		exec:   exec,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics != nil {
		c.metrics.Height.Set(float64(c.height.Load()))
	}
	return c
}

// Open builds a chain over persisted state. The clock resumes at the stored
// tip when it is above the configured genesis height.
func Open(ctx context.Context, exec Executor, tips TipStore, opts ...Option) (*Chain, error) {
	c := New(exec, append(opts, WithTipStore(tips))...)
	tip, err := tips.LoadTip(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load ledger tip")
	}
	if uint64(tip) > c.height.Load() {
		c.height.Store(uint64(tip))
		c.logger.InfoContext(ctx, "ledger resumed from persisted tip", "height", tip)
	}
	if c.metrics != nil {
		c.metrics.Height.Set(float64(c.height.Load()))
	}
	return c, nil
}

// Height returns the height of the last mined block. Read-only queries
// evaluate at this height.
func (c *Chain) Height() domain.Height {
	return domain.Height(c.height.Load())
}

// MineBlock executes txs at the next height and advances the tip.
func (c *Chain) MineBlock(ctx context.Context, txs []Tx) (Block, error) {
	c.blockMu.Lock()
	defer c.blockMu.Unlock()
	return c.mineLocked(ctx, txs)
}

func (c *Chain) mineLocked(ctx context.Context, txs []Tx) (Block, error) {
	next, err := c.Height().Add(1)
	if err != nil {
		return Block{}, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "ledger height exhausted")
	}
	if err := c.saveTip(ctx, next); err != nil {
		return Block{}, err
	}
	return c.executeBlock(ctx, next, txs), nil
}

func (c *Chain) saveTip(ctx context.Context, height domain.Height) error {
	if c.tips == nil {
		return nil
	}
	if err := c.tips.SaveTip(ctx, height); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist ledger tip")
	}
	return nil
}

func (c *Chain) executeBlock(ctx context.Context, next domain.Height, txs []Tx) Block {
	ctx, span := tracer.Start(ctx, "ledger.MineBlock", trace.WithAttributes(
		attribute.Int64("ledger.height", int64(next)),
		attribute.Int("ledger.tx_count", len(txs)),
	))
	defer span.End()
	start := time.Now()

	block := Block{Height: next, MinedAt: start, Receipts: make([]Receipt, 0, len(txs))}
	for i, tx := range txs {
		block.Receipts = append(block.Receipts, c.execute(ctx, next, i, tx))
	}
	c.height.Store(uint64(next))

	if c.metrics != nil {
		c.metrics.ObserveBlock(block, start)
	}
	if len(txs) > 0 {
		c.logger.DebugContext(ctx, "block mined",
			"height", next,
			"tx_count", len(txs),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return block
}

func (c *Chain) execute(ctx context.Context, height domain.Height, index int, tx Tx) Receipt {
	receipt := Receipt{Height: height, Index: index, Sender: tx.Sender}
	if tx.Operation == nil {
		receipt.err = dErrors.New(dErrors.CodeInvalidInput, "transaction has no operation")
	} else {
		receipt.Operation = tx.Operation.OperationName()
		receipt.err = c.exec.Apply(ctx, models.Invocation{Sender: tx.Sender, Height: height}, tx.Operation)
	}
	if receipt.err == nil {
		receipt.OK = true
		return receipt
	}
	receipt.Code = models.NumericCode(receipt.err)
	receipt.Error = receipt.err.Error()
	return receipt
}

// MineEmptyBlocks advances the clock by n blocks. The final height is
// persisted once up front.
func (c *Chain) MineEmptyBlocks(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	c.blockMu.Lock()
	defer c.blockMu.Unlock()

	target, err := c.Height().Add(domain.Height(n))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "ledger height exhausted")
	}
	if err := c.saveTip(ctx, target); err != nil {
		return err
	}
	for next := c.Height() + 1; next <= target; next++ {
		c.executeBlock(ctx, next, nil)
	}
	return nil
}

// Submit queues tx and waits for its receipt. With auto-mine the transaction
// is mined at once in a block of its own. If ctx ends first the transaction
// stays queued and will still be mined.
func (c *Chain) Submit(ctx context.Context, tx Tx) (Receipt, error) {
	if c.autoMine {
		block, err := c.MineBlock(ctx, []Tx{tx})
		if err != nil {
			return Receipt{}, err
		}
		return block.Receipts[0], nil
	}

	p := pendingTx{tx: tx, done: make(chan Receipt, 1)}
	c.poolMu.Lock()
	c.mempool = append(c.mempool, p)
	size := len(c.mempool)
	c.poolMu.Unlock()
	if c.metrics != nil {
		c.metrics.MempoolSize.Set(float64(size))
	}

	select {
	case r := <-p.done:
		return r, nil
	case <-ctx.Done():
		return Receipt{}, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction not mined before deadline")
	}
}

// MinePending mines every queued transaction into one block, in arrival
// order. An empty mempool still produces a block.
func (c *Chain) MinePending(ctx context.Context) (Block, error) {
	c.blockMu.Lock()
	defer c.blockMu.Unlock()

	c.poolMu.Lock()
	pending := c.mempool
	c.mempool = nil
	c.poolMu.Unlock()
	if c.metrics != nil {
		c.metrics.MempoolSize.Set(0)
	}

	txs := make([]Tx, len(pending))
	for i, p := range pending {
		txs[i] = p.tx
	}
	block, err := c.mineLocked(ctx, txs)
	if err != nil {
		c.poolMu.Lock()
		c.mempool = append(pending, c.mempool...)
		c.poolMu.Unlock()
		return Block{}, err
	}
	for i, p := range pending {
		p.done <- block.Receipts[i]
	}
	return block, nil
}

// Pending reports the mempool size.
func (c *Chain) Pending() int {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	return len(c.mempool)
}
