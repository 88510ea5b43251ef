// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swapvault"

// Outcome labels.
const (
	StatusSuccess   = "success"
	StatusFailure   = "failure"
	StatusCancelled = "cancelled"
)

// Collector owns the quote and settlement metrics. Each collector registers
// into its own registry so several can coexist in one process.
type Collector struct {
	registry         *prometheus.Registry
	quoteCounter     *prometheus.CounterVec
	quoteDuration    *prometheus.HistogramVec
	transferCounter  *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		quoteCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quotes_total",
				Help:      "Total number of amount-out computations",
			},
			[]string{"status", "side"},
		),
		quoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "quote_duration_seconds",
				Help:      "Quote duration in seconds, including metadata probes",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
			},
			[]string{"side"},
		),
		transferCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of settlement transfers attempted",
			},
			[]string{"status", "currency"},
		),
		transferDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Transfer duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"currency"},
		),
	}

	c.registry.MustRegister(c.quoteCounter, c.quoteDuration, c.transferCounter, c.transferDuration)
	return c
}

// Registry exposes the collector's registry for scraping.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteToTextfile dumps the registry in the Prometheus text format, for the
// node exporter's textfile collector.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// RecordQuote records one quote. side is "buy" or "sell".
func (c *Collector) RecordQuote(ctx context.Context, side string, duration time.Duration, err error) {
	c.quoteCounter.WithLabelValues(status(ctx, err), side).Inc()
	c.quoteDuration.WithLabelValues(side).Observe(duration.Seconds())
}

// RecordTransfer records one transfer. currency is the currency kind label.
func (c *Collector) RecordTransfer(ctx context.Context, currency string, duration time.Duration, err error) {
	c.transferCounter.WithLabelValues(status(ctx, err), currency).Inc()
	c.transferDuration.WithLabelValues(currency).Observe(duration.Seconds())
}

// Reset clears all series (useful in tests).
func (c *Collector) Reset() {
	c.quoteCounter.Reset()
	c.quoteDuration.Reset()
	c.transferCounter.Reset()
	c.transferDuration.Reset()
}

func status(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled), ctx.Err() != nil:
		return StatusCancelled
	default:
		return StatusFailure
	}
}
