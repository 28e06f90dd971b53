package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by the BCRA statistics API.
const DateLayout = "2006-01-02"

// RawRecord is one entry of the principal-variables response. A null or
// missing "valor" decodes as an invalid Value.
type RawRecord struct {
	VariableID int                 `json:"idVariable"`
	Value      decimal.NullDecimal `json:"valor"`
	Date       string              `json:"fecha"`
}

// Variable is a RawRecord resolved against the variable catalog. An invalid
// Value or a zero Timestamp means the upstream field was absent or unreadable.
type Variable struct {
	ID           int                 `json:"id"`
	Name         string              `json:"name"`
	Value        decimal.NullDecimal `json:"value"`
	Timestamp    time.Time           `json:"timestamp"`
	IsPercentage bool                `json:"is_percentage"`
	IsMonthly    bool                `json:"is_monthly"`
	DisplayOrder int                 `json:"display_order"`
	Unit         Unit                `json:"unit"`
	Category     Category            `json:"category"`
	ValueLabel   string              `json:"value_label,omitempty"`
}

// RawExtra is the flat record served by the secondary source. Numeric fields
// land in Values (a JSON null is kept as an invalid entry), strings in Labels.
type RawExtra struct {
	Values map[string]decimal.NullDecimal
	Labels map[string]string
}

// Value returns the named numeric field; a missing field is invalid.
func (r RawExtra) Value(name string) decimal.NullDecimal {
	if r.Values == nil {
		return decimal.NullDecimal{}
	}
	return r.Values[name]
}

// Label returns the named string field or "".
func (r RawExtra) Label(name string) string {
	if r.Labels == nil {
		return ""
	}
	return r.Labels[name]
}

// Extras is the typed view of the secondary source. Balances are in millions.
type Extras struct {
	GovernmentDeposits decimal.NullDecimal `json:"government_deposits"`
	LefiBCRA           decimal.NullDecimal `json:"lefi_bcra"`
	LefiBanks          decimal.NullDecimal `json:"lefi_banks"`
	Bopreal            decimal.NullDecimal `json:"bopreal"`
	Reserves           decimal.NullDecimal `json:"reserves"`
	BoprealLabel       string              `json:"bopreal_label,omitempty"`
	DepositsAsOf       time.Time           `json:"deposits_as_of"`
	ReservesAsOf       time.Time           `json:"reserves_as_of"`
}

// Derived holds values computed from two or more inputs of the same cycle.
// An invalid value means the inputs were incomplete.
type Derived struct {
	ExtendedMonetaryBase decimal.NullDecimal `json:"extended_monetary_base"`
	ReserveRatio         decimal.NullDecimal `json:"reserve_ratio"`
	BoprealDollars       decimal.NullDecimal `json:"bopreal_dollars"`
}
