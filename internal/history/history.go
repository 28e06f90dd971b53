// Package history serves the trailing-window series behind a variable chart.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"bcrawatch/config"
	"bcrawatch/internal/catalog"
	"bcrawatch/internal/format"
	"bcrawatch/internal/model"
	"bcrawatch/logger"
)

// ErrUnknownVariable is returned for identifiers outside the catalog.
var ErrUnknownVariable = errors.New("unknown variable")

type SeriesSource interface {
	VariableSeries(ctx context.Context, id int, from, to time.Time) ([]model.RawRecord, error)
}

// Service fetches series and memoizes them in memory for the cache TTL.
type Service struct {
	src    SeriesSource
	months int
	cache  *cache.Cache
	log    *logger.Log
	now    func() time.Time
}

func NewService(src SeriesSource, cfg config.HistoryConfig, log *logger.Log) *Service {
	months := cfg.Months
	if months <= 0 {
		months = config.DefaultHistoryMonths
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = config.DefaultHistoryCacheTTL
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Service{
		src:    src,
		months: months,
		cache:  cache.New(ttl, 2*ttl),
		log:    log,
		now:    time.Now,
	}
}

// Series returns the observations of id over the trailing window ending
// today, oldest first.
func (s *Service) Series(ctx context.Context, id int) (model.Series, error) {
	desc, ok := catalog.Lookup(id)
	if !ok {
		return model.Series{}, fmt.Errorf("%w: %d", ErrUnknownVariable, id)
	}

	now := s.now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, -s.months, 0)

	log := s.log.WithComponent("history").WithFields(logger.Fields{"variable_id": id})

	key := fmt.Sprintf("%d:%s", id, to.Format(model.DateLayout))
	if cached, found := s.cache.Get(key); found {
		log.Debug("series cache hit")
		return clonePoints(cached.(model.Series)), nil
	}

	records, err := s.src.VariableSeries(ctx, id, from, to)
	if err != nil {
		return model.Series{}, fmt.Errorf("series %d: %w", id, err)
	}

	series := build(desc, records)
	series.From, series.To = from, to

	s.cache.Set(key, series, cache.DefaultExpiration)
	log.WithFields(logger.Fields{"points": len(series.Points)}).Debug("series cached")
	return clonePoints(series), nil
}

// clonePoints detaches the returned points from the cached entry.
func clonePoints(s model.Series) model.Series {
	s.Points = append([]model.Point(nil), s.Points...)
	return s
}

func build(desc catalog.Descriptor, records []model.RawRecord) model.Series {
	series := model.Series{
		VariableID: desc.ID,
		Name:       desc.Name,
		ValueLabel: desc.ValueLabel,
		Points:     make([]model.Point, 0, len(records)),
	}
	for _, rec := range records {
		if !rec.Value.Valid {
			continue
		}
		date, err := catalog.ParseDate(rec.Date)
		if err != nil {
			continue
		}
		label := date.Format(model.DateLayout)
		if desc.IsMonthly {
			label = format.MonthName(date.Month())
		}
		series.Points = append(series.Points, model.Point{Date: date, Label: label, Value: rec.Value.Decimal})
	}
	sort.SliceStable(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})
	return series
}
