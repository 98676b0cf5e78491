package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks block production.
type Metrics struct {
	Height        prometheus.Gauge
	BlocksMined   prometheus.Counter
	Transactions  *prometheus.CounterVec
	BlockDuration prometheus.Histogram
	MempoolSize   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Height: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerpass_ledger_height",
			Help: "Height of the last mined block",
		}),
		BlocksMined: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerpass_ledger_blocks_mined_total",
			Help: "Total number of blocks mined, including empty blocks",
		}),
		Transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerpass_ledger_transactions_total",
			Help: "Mined transactions by result",
		}, []string{"result"}),
		BlockDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerpass_ledger_block_duration_seconds",
			Help:    "Time spent executing one block",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		MempoolSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerpass_ledger_mempool_size",
			Help: "Transactions waiting to be mined",
		}),
	}
}

func (m *Metrics) ObserveBlock(block Block, start time.Time) {
	m.Height.Set(float64(block.Height))
	m.BlocksMined.Inc()
	m.BlockDuration.Observe(time.Since(start).Seconds())
	for _, r := range block.Receipts {
		if r.OK {
			m.Transactions.WithLabelValues("ok").Inc()
		} else {
			m.Transactions.WithLabelValues("failed").Inc()
		}
	}
}
