// Package catalog holds the static table of BCRA variables the dashboard
// displays. Identifiers missing from the table are ignored by the pipeline.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bcrawatch/internal/model"
)

// Well-known BCRA variable identifiers.
const (
	VarReserves         = 1
	VarRetailDollar     = 4
	VarWholesaleDollar  = 5
	VarPolicyRate       = 6
	VarMonetaryBase     = 15
	VarMonthlyInflation = 27
	VarYearlyInflation  = 28
)

// Descriptor describes how a raw BCRA variable is presented.
type Descriptor struct {
	ID           int
	Name         string
	Category     model.Category
	Unit         model.Unit
	IsPercentage bool
	IsMonthly    bool
	DisplayOrder int
	ValueLabel   string
}

var table = map[int]Descriptor{
	VarReserves: {
		ID: VarReserves, Name: "Reservas Internacionales",
		Category: model.CategoryPrimary, Unit: model.UnitDollars,
		DisplayOrder: 0, ValueLabel: "Valor",
	},
	VarMonetaryBase: {
		ID: VarMonetaryBase, Name: "Base Monetaria",
		Category: model.CategoryPrimary, Unit: model.UnitPesos,
		DisplayOrder: 1, ValueLabel: "Valor",
	},
	VarPolicyRate: {
		ID: VarPolicyRate, Name: "Tasa de Política Monetaria",
		Category: model.CategoryPrimary, Unit: model.UnitPercent, IsPercentage: true,
		DisplayOrder: 2, ValueLabel: "Valor",
	},
	VarMonthlyInflation: {
		ID: VarMonthlyInflation, Name: "Inflación Mensual",
		Category: model.CategoryInflation, Unit: model.UnitPercent, IsPercentage: true, IsMonthly: true,
		DisplayOrder: 0, ValueLabel: "Mensual",
	},
	VarYearlyInflation: {
		ID: VarYearlyInflation, Name: "Inflación Interanual",
		Category: model.CategoryInflation, Unit: model.UnitPercent, IsPercentage: true, IsMonthly: true,
		DisplayOrder: 1, ValueLabel: "Interanual",
	},
	VarRetailDollar: {
		ID: VarRetailDollar, Name: "Dólar Minorista",
		Category: model.CategoryExchange, Unit: model.UnitPesos,
		DisplayOrder: 0, ValueLabel: "Valor",
	},
	VarWholesaleDollar: {
		ID: VarWholesaleDollar, Name: "Dólar Mayorista",
		Category: model.CategoryExchange, Unit: model.UnitPesos,
		DisplayOrder: 1, ValueLabel: "Valor",
	},
}

// Lookup returns the descriptor registered for id.
func Lookup(id int) (Descriptor, bool) {
	d, ok := table[id]
	return d, ok
}

// All returns every descriptor ordered by category and display order.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(table))
	for _, d := range table {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// Normalize builds the display variable for rec. The record date must be a
// YYYY-MM-DD calendar date, optionally followed by a time component.
func (d Descriptor) Normalize(rec model.RawRecord) (model.Variable, error) {
	v := model.Variable{
		ID:           d.ID,
		Name:         d.Name,
		Value:        rec.Value,
		IsPercentage: d.IsPercentage,
		IsMonthly:    d.IsMonthly,
		DisplayOrder: d.DisplayOrder,
		Unit:         d.Unit,
		Category:     d.Category,
		ValueLabel:   d.ValueLabel,
	}
	ts, err := ParseDate(rec.Date)
	if err != nil {
		return v, fmt.Errorf("variable %d: %w", rec.VariableID, err)
	}
	v.Timestamp = ts
	return v, nil
}

var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// ParseDate accepts the date formats seen across the upstream APIs. Dates
// without a zone are read as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
