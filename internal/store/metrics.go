package store

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for store metrics. Without an installed SDK the
// global provider is a no-op.
var meter = otel.Meter("statetree.store")

// Metric instruments for store operations.
var (
	dispatchTotal      metric.Int64Counter
	notificationsTotal metric.Int64Counter
	diffEntries        metric.Int64Histogram
	indexUpdatesTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// Dispatch outcomes recorded on dispatchTotal.
const (
	outcomeCommitted = "committed"
	outcomeRejected  = "rejected"
	outcomeReentrant = "reentrant"
)

// initMetrics initializes all metric instruments.
// Safe to call multiple times; uses sync.Once internally.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		dispatchTotal, err = meter.Int64Counter(
			"statetree_dispatch_total",
			metric.WithDescription("Total number of dispatches by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		notificationsTotal, err = meter.Int64Counter(
			"statetree_notifications_total",
			metric.WithDescription("Total number of observer callbacks invoked"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diffEntries, err = meter.Int64Histogram(
			"statetree_diff_entries",
			metric.WithDescription("Number of diff entries per committed dispatch"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		indexUpdatesTotal, err = meter.Int64Counter(
			"statetree_component_index_updates_total",
			metric.WithDescription("Component index maintenance by mode (patched or rebuilt)"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// storeMetrics records for one store; the zero value records nothing.
type storeMetrics struct {
	enabled bool
}

func (m storeMetrics) ready() bool {
	return m.enabled && initMetrics() == nil
}

func (m storeMetrics) recordDispatch(outcome string, entries int) {
	if !m.ready() {
		return
	}
	ctx := context.Background()
	dispatchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if outcome == outcomeCommitted {
		diffEntries.Record(ctx, int64(entries))
	}
}

func (m storeMetrics) recordNotifications(calls int) {
	if calls == 0 || !m.ready() {
		return
	}
	notificationsTotal.Add(context.Background(), int64(calls))
}

func (m storeMetrics) recordIndexUpdate(patched bool) {
	if !m.ready() {
		return
	}
	mode := "rebuilt"
	if patched {
		mode = "patched"
	}
	indexUpdatesTotal.Add(context.Background(), 1, metric.WithAttributes(attribute.String("mode", mode)))
}
