package model

import "time"

// Snapshot is the published aggregate of one refresh cycle. It is never
// mutated after publication; every cycle builds a new one.
type Snapshot struct {
	CycleID   string     `json:"cycle_id,omitempty"`
	Primary   []Variable `json:"primary"`
	Inflation []Variable `json:"inflation"`
	Exchange  []Variable `json:"exchange"`
	Extras    Extras     `json:"extras"`
	Derived   Derived    `json:"derived"`
	Quotes    QuoteBoard `json:"quotes"`

	// FetchedAt is when this snapshot was assembled.
	FetchedAt time.Time `json:"fetched_at"`
	// LastUpdated only advances when both primary and secondary sources
	// answered in the same cycle.
	LastUpdated time.Time `json:"last_updated"`
	// Partial is set when the secondary source failed in this cycle.
	Partial bool `json:"partial"`
}

// EmptySnapshot is the placeholder published before the first cycle.
func EmptySnapshot() *Snapshot {
	return &Snapshot{}
}

// Loading reports that no cycle has completed yet.
func (s *Snapshot) Loading() bool {
	return s == nil || s.FetchedAt.IsZero()
}

// Stale reports whether the data is older than two refresh intervals.
func (s *Snapshot) Stale(now time.Time, interval time.Duration) bool {
	if s.Loading() {
		return false
	}
	return now.Sub(s.FetchedAt) > 2*interval
}

// Category returns the variable list for c.
func (s *Snapshot) Category(c Category) []Variable {
	if s == nil {
		return nil
	}
	switch c {
	case CategoryPrimary:
		return s.Primary
	case CategoryInflation:
		return s.Inflation
	case CategoryExchange:
		return s.Exchange
	default:
		return nil
	}
}

// Variable finds a variable by id across all categories.
func (s *Snapshot) Variable(id int) (Variable, bool) {
	if s == nil {
		return Variable{}, false
	}
	for _, list := range [][]Variable{s.Primary, s.Inflation, s.Exchange} {
		for _, v := range list {
			if v.ID == id {
				return v, true
			}
		}
	}
	return Variable{}, false
}
