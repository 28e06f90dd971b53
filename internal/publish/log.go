package publish

import (
	"context"

	"bcrawatch/internal/model"
	"bcrawatch/logger"
)

// LogSink writes a one-line summary of each snapshot.
type LogSink struct {
	log *logger.Log
}

func NewLogSink(log *logger.Log) *LogSink {
	if log == nil {
		log = logger.GetLogger()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Publish(_ context.Context, snap *model.Snapshot) error {
	fields := logger.Fields{
		"primary":      len(snap.Primary),
		"inflation":    len(snap.Inflation),
		"exchange":     len(snap.Exchange),
		"quotes":       len(snap.Quotes.Quotes),
		"partial":      snap.Partial,
		"fetched_at":   snap.FetchedAt,
		"last_updated": snap.LastUpdated,
	}
	if snap.Derived.ExtendedMonetaryBase.Valid {
		fields["extended_monetary_base"] = snap.Derived.ExtendedMonetaryBase.Decimal.String()
	}
	if snap.Derived.ReserveRatio.Valid {
		fields["reserve_ratio"] = snap.Derived.ReserveRatio.Decimal.String()
	}

	s.log.WithComponent("log_sink").WithCycle(snap.CycleID).WithFields(fields).Info("snapshot published")
	return nil
}
