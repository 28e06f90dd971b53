// Package pipeline runs the refresh cycle that turns upstream responses into
// published snapshots.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bcrawatch/internal/metrics"
	"bcrawatch/internal/model"
	"bcrawatch/internal/publish"
	"bcrawatch/internal/source/extras"
	"bcrawatch/logger"
)

// DefaultInterval is the refresh period used when Options.Interval is unset.
const DefaultInterval = 5 * time.Minute

// ErrRefreshInProgress is returned by Refresh when another cycle is running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

var errSecondaryDisabled = errors.New("secondary source disabled")

type PrimarySource interface {
	PrincipalVariables(ctx context.Context) ([]model.RawRecord, error)
}

type SecondarySource interface {
	Fetch(ctx context.Context) (model.RawExtra, error)
}

type QuoteSource interface {
	Board(ctx context.Context) (model.QuoteBoard, error)
}

// Sources groups the upstreams of a cycle. Secondary and Quotes may be nil.
type Sources struct {
	Primary   PrimarySource
	Secondary SecondarySource
	Quotes    QuoteSource
}

type Options struct {
	Interval time.Duration
	Sinks    []publish.Sink
	Log      *logger.Log
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Aggregator owns the published snapshot and every piece of state that
// survives between cycles.
type Aggregator struct {
	sources  Sources
	interval time.Duration
	sinks    []publish.Sink
	log      *logger.Log
	now      func() time.Time

	current  atomic.Pointer[model.Snapshot]
	inFlight atomic.Bool

	mu      sync.Mutex
	running bool
}

func New(sources Sources, opts Options) *Aggregator {
	a := &Aggregator{
		sources:  sources,
		interval: opts.Interval,
		sinks:    opts.Sinks,
		log:      opts.Log,
		now:      opts.Clock,
	}
	if a.interval <= 0 {
		a.interval = DefaultInterval
	}
	if a.log == nil {
		a.log = logger.GetLogger()
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.current.Store(model.EmptySnapshot())
	return a
}

// Snapshot returns the latest published snapshot. It never returns nil.
func (a *Aggregator) Snapshot() *model.Snapshot {
	return a.current.Load()
}

func (a *Aggregator) Interval() time.Duration {
	return a.interval
}

// Refresh runs one cycle. When a cycle is already running it returns the
// current snapshot and ErrRefreshInProgress without touching any source.
func (a *Aggregator) Refresh(ctx context.Context) (*model.Snapshot, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		metrics.RecordRefresh(a.log, metrics.OutcomeSkipped, 0)
		return a.Snapshot(), ErrRefreshInProgress
	}
	defer a.inFlight.Store(false)
	return a.refresh(ctx, ctx)
}

// Run refreshes immediately and then once per interval until ctx is
// cancelled. Ticks that arrive while a cycle is running are dropped. On
// cancellation a running cycle is allowed to finish but its result is not
// published; Run returns after it has finished.
func (a *Aggregator) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("aggregator already running")
	}
	a.running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	log := a.log.WithComponent("pipeline")
	log.WithFields(logger.Fields{"interval": a.interval.String()}).Info("starting refresh loop")

	var wg sync.WaitGroup
	tick := func() {
		if !a.inFlight.CompareAndSwap(false, true) {
			log.Debug("refresh still in flight, skipping tick")
			metrics.RecordRefresh(a.log, metrics.OutcomeSkipped, 0)
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer a.inFlight.Store(false)
			_, _ = a.refresh(context.WithoutCancel(ctx), ctx)
		}()
	}

	tick()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			log.Info("refresh loop stopped")
			return nil
		case <-ticker.C:
			tick()
		}
	}
}

// refresh performs the upstream calls with fetchCtx and publishes the result
// only while gate is still live.
func (a *Aggregator) refresh(fetchCtx, gate context.Context) (*model.Snapshot, error) {
	cycleID := uuid.NewString()
	start := time.Now()
	log := a.log.WithComponent("pipeline").WithCycle(cycleID)
	prev := a.Snapshot()

	records, err := a.sources.Primary.PrincipalVariables(fetchCtx)
	if err != nil {
		metrics.RecordSourceError(a.log, "bcra")
		metrics.RecordRefresh(a.log, metrics.OutcomeFailed, time.Since(start))
		log.WithError(err).Warn("primary fetch failed, keeping previous snapshot")
		return prev, fmt.Errorf("refresh %s: %w", cycleID, err)
	}
	logger.LogDataFlowEntry(log, "bcra", "pipeline", len(records), "raw_record")

	st := normalize(records)
	if st.dropped > 0 || st.invalid > 0 {
		log.WithFields(logger.Fields{
			"dropped": st.dropped,
			"invalid": st.invalid,
		}).Debug("records skipped during normalization")
	}

	next := &model.Snapshot{
		CycleID:   cycleID,
		Primary:   st.primary,
		Inflation: st.inflation,
		Exchange:  st.exchange,
		Quotes:    prev.Quotes,
	}

	raw, err := a.fetchSecondary(fetchCtx)
	if err != nil {
		if !errors.Is(err, errSecondaryDisabled) {
			metrics.RecordSourceError(a.log, "extras")
		}
		log.WithError(err).Warn("secondary fetch failed, derived fields unavailable")
		next.Partial = true
	} else {
		next.Extras = extras.ToExtras(raw)
		next.Derived = derive(st, next.Extras)
	}

	if a.sources.Quotes != nil {
		board, err := a.sources.Quotes.Board(fetchCtx)
		if err != nil {
			metrics.RecordSourceError(a.log, "dolar")
			log.WithError(err).Warn("quote board fetch failed, keeping previous board")
		} else {
			next.Quotes = board
		}
	}

	sortByDisplayOrder(next.Primary)
	sortByDisplayOrder(next.Inflation)
	sortByDisplayOrder(next.Exchange)

	if err := gate.Err(); err != nil {
		log.Info("refresh finished after shutdown, discarding result")
		return prev, err
	}

	now := a.now()
	next.FetchedAt = now
	if next.Partial {
		next.LastUpdated = prev.LastUpdated
	} else {
		next.LastUpdated = after(now, prev.LastUpdated)
	}
	a.current.Store(next)

	outcome := metrics.OutcomeSuccess
	if next.Partial {
		outcome = metrics.OutcomePartial
	}
	metrics.RecordRefresh(a.log, outcome, time.Since(start))
	log.WithFields(logger.Fields{
		"primary":   len(next.Primary),
		"inflation": len(next.Inflation),
		"exchange":  len(next.Exchange),
		"partial":   next.Partial,
	}).Info("snapshot published")

	a.publish(fetchCtx, next)
	return next, nil
}

func (a *Aggregator) fetchSecondary(ctx context.Context) (model.RawExtra, error) {
	if a.sources.Secondary == nil {
		return model.RawExtra{}, errSecondaryDisabled
	}
	return a.sources.Secondary.Fetch(ctx)
}

func (a *Aggregator) publish(ctx context.Context, snap *model.Snapshot) {
	for _, sink := range a.sinks {
		if err := sink.Publish(ctx, snap); err != nil {
			a.log.WithComponent("pipeline").WithCycle(snap.CycleID).WithError(err).
				WithFields(logger.Fields{"sink": sink.Name()}).Warn("sink publish failed")
		}
	}
}

// after returns now, or the instant right after prev when the clock has not
// moved past it.
func after(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Nanosecond)
}
