package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bcrawatch/logger"
)

// Outcome classifies a finished refresh cycle.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	// OutcomePartial means the primary data was published without the
	// secondary source.
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

type refreshCounters struct {
	success    atomic.Int64
	partial    atomic.Int64
	failed     atomic.Int64
	skipped    atomic.Int64
	lastMillis atomic.Int64
}

var (
	refreshes    refreshCounters
	sourceErrors sync.Map
)

// Stats is a point-in-time copy of the refresh counters.
type Stats struct {
	Success      int64
	Partial      int64
	Failed       int64
	Skipped      int64
	LastDuration time.Duration
	SourceErrors map[string]int64
}

func init() {
	Subscribe(countRefreshEvent)
}

// RecordRefresh emits refresh_total and, unless the cycle was skipped,
// refresh_duration.
func RecordRefresh(log *logger.Log, outcome Outcome, duration time.Duration) {
	EmitMetric(log, "pipeline", "refresh_total", 1, "counter", logger.Fields{
		"outcome": string(outcome),
		"unit":    "count",
	})
	if outcome == OutcomeSkipped {
		return
	}
	EmitMetric(log, "pipeline", "refresh_duration", duration, "gauge", logger.Fields{
		"unit": "milliseconds",
	})
}

// RecordSourceError emits source_errors for a failed upstream request.
func RecordSourceError(log *logger.Log, source string) {
	EmitMetric(log, "source", "source_errors", 1, "counter", logger.Fields{
		"source": source,
		"unit":   "count",
	})
}

// countRefreshEvent keeps the in-process totals behind RefreshStats.
func countRefreshEvent(e Event) {
	switch e.Name {
	case "refresh_total":
		outcome, _ := e.Fields["outcome"].(string)
		switch Outcome(outcome) {
		case OutcomeSuccess:
			refreshes.success.Add(1)
		case OutcomePartial:
			refreshes.partial.Add(1)
		case OutcomeFailed:
			refreshes.failed.Add(1)
		case OutcomeSkipped:
			refreshes.skipped.Add(1)
		}
	case "refresh_duration":
		if d, ok := e.Value.(time.Duration); ok {
			refreshes.lastMillis.Store(d.Milliseconds())
		}
	case "source_errors":
		source, _ := e.Fields["source"].(string)
		v, _ := sourceErrors.LoadOrStore(source, new(atomic.Int64))
		v.(*atomic.Int64).Add(1)
	}
}

// RefreshStats returns a copy of the counters.
func RefreshStats() Stats {
	stats := Stats{
		Success:      refreshes.success.Load(),
		Partial:      refreshes.partial.Load(),
		Failed:       refreshes.failed.Load(),
		Skipped:      refreshes.skipped.Load(),
		LastDuration: time.Duration(refreshes.lastMillis.Load()) * time.Millisecond,
		SourceErrors: make(map[string]int64),
	}
	sourceErrors.Range(func(k, v any) bool {
		stats.SourceErrors[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return stats
}

// StartReport logs the refresh counters and per-component warn/error totals
// every interval until ctx is cancelled. A non-positive interval disables it.
func StartReport(ctx context.Context, log *logger.Log, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = logger.GetLogger()
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report(log)
			}
		}
	}()
}

func report(log *logger.Log) {
	stats := RefreshStats()
	fields := logger.Fields{
		"refresh_success": stats.Success,
		"refresh_partial": stats.Partial,
		"refresh_failed":  stats.Failed,
		"refresh_skipped": stats.Skipped,
		"last_refresh_ms": stats.LastDuration.Milliseconds(),
		"source_errors":   stats.SourceErrors,
		"log_counts":      logger.Counts(),
	}
	log.WithComponent("report").WithFields(fields).Info("runtime report")
}
