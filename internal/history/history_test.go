package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bcrawatch/config"
	"bcrawatch/internal/model"
)

type fakeSource struct {
	calls    int
	from, to time.Time
	records  []model.RawRecord
	err      error
}

func (f *fakeSource) VariableSeries(_ context.Context, _ int, from, to time.Time) ([]model.RawRecord, error) {
	f.calls++
	f.from, f.to = from, to
	return f.records, f.err
}

func newService(src SeriesSource, now time.Time) *Service {
	s := NewService(src, config.HistoryConfig{Months: 12, CacheTTL: time.Hour}, nil)
	s.now = func() time.Time { return now }
	return s
}

func TestSeriesWindowAndMonthlyLabels(t *testing.T) {
	src := &fakeSource{records: []model.RawRecord{
		{VariableID: 27, Value: decimal.NewNullDecimal(decimal.RequireFromString("4.2")), Date: "2024-06-30"},
		{VariableID: 27, Value: decimal.NewNullDecimal(decimal.RequireFromString("8.8")), Date: "2024-04-30"},
		{VariableID: 27, Value: decimal.NewNullDecimal(decimal.RequireFromString("1")), Date: "bad"},
		{VariableID: 27, Date: "2024-05-31"},
	}}
	s := newService(src, time.Date(2024, 7, 15, 18, 30, 0, 0, time.UTC))

	series, err := s.Series(context.Background(), 27)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if !src.from.Equal(time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC)) || !src.to.Equal(time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window %s - %s", src.from, src.to)
	}
	if len(series.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series.Points))
	}
	if series.Points[0].Label != "Abril" || series.Points[1].Label != "Junio" {
		t.Fatalf("points not ordered or labelled: %+v", series.Points)
	}
	if series.Name != "Inflación Mensual" || series.ValueLabel != "Mensual" {
		t.Fatalf("unexpected series metadata %+v", series)
	}
}

func TestSeriesDailyLabels(t *testing.T) {
	src := &fakeSource{records: []model.RawRecord{{VariableID: 1, Value: decimal.NewNullDecimal(decimal.NewFromInt(30000)), Date: "2024-07-01"}}}
	s := newService(src, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))

	series, err := s.Series(context.Background(), 1)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if series.Points[0].Label != "2024-07-01" {
		t.Fatalf("unexpected label %q", series.Points[0].Label)
	}
}

func TestSeriesCached(t *testing.T) {
	src := &fakeSource{records: []model.RawRecord{{VariableID: 1, Value: decimal.NewNullDecimal(decimal.NewFromInt(1)), Date: "2024-07-01"}}}
	s := newService(src, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		if _, err := s.Series(context.Background(), 1); err != nil {
			t.Fatalf("Series: %v", err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", src.calls)
	}

	s.now = func() time.Time { return time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC) }
	if _, err := s.Series(context.Background(), 1); err != nil {
		t.Fatalf("Series: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("a new day should refetch, got %d calls", src.calls)
	}
}

func TestSeriesCallersCannotMutateCache(t *testing.T) {
	src := &fakeSource{records: []model.RawRecord{{VariableID: 1, Value: decimal.NewNullDecimal(decimal.NewFromInt(30000)), Date: "2024-07-01"}}}
	s := newService(src, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))

	first, err := s.Series(context.Background(), 1)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	first.Points[0].Label = "changed"

	second, err := s.Series(context.Background(), 1)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	second.Points[0].Value = decimal.Zero

	third, err := s.Series(context.Background(), 1)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if third.Points[0].Label != "2024-07-01" || third.Points[0].Value.IntPart() != 30000 {
		t.Fatalf("cached series was mutated: %+v", third.Points[0])
	}
	if src.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", src.calls)
	}
}

func TestSeriesUnknownVariable(t *testing.T) {
	src := &fakeSource{}
	s := newService(src, time.Now())

	_, err := s.Series(context.Background(), 99)
	if !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("expected ErrUnknownVariable, got %v", err)
	}
	if src.calls != 0 {
		t.Fatal("unknown ids must not reach the upstream")
	}
}

func TestSeriesErrorsAreNotCached(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	s := newService(src, time.Now())

	if _, err := s.Series(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
	src.err = nil
	if _, err := s.Series(context.Background(), 1); err != nil {
		t.Fatalf("Series: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected retry after error, got %d calls", src.calls)
	}
}
