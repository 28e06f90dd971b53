package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one exchange-rate instrument. Ask/Bid are set for two-sided
// markets, Price for single-price ones.
type Quote struct {
	Name      string              `json:"name"`
	Price     decimal.NullDecimal `json:"price"`
	Ask       decimal.NullDecimal `json:"ask"`
	Bid       decimal.NullDecimal `json:"bid"`
	Variation decimal.NullDecimal `json:"variation"`
	Timestamp time.Time           `json:"timestamp"`
}

// TwoSided reports whether the quote carries ask and bid instead of a price.
func (q Quote) TwoSided() bool {
	return q.Ask.Valid || q.Bid.Valid
}

// QuoteBoard is the set of exchange-rate quotes read in one fetch.
type QuoteBoard struct {
	Quotes       []Quote             `json:"quotes"`
	CardRate     decimal.NullDecimal `json:"card_rate"`
	ImporterRate decimal.NullDecimal `json:"importer_rate"`
	FetchedAt    time.Time           `json:"fetched_at"`
}

// Quote returns the named quote.
func (b QuoteBoard) Quote(name string) (Quote, bool) {
	for _, q := range b.Quotes {
		if q.Name == name {
			return q, true
		}
	}
	return Quote{}, false
}
