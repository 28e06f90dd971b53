package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"bcrawatch/internal/catalog"
	"bcrawatch/internal/model"
)

// cycleState collects one cycle's normalized variables together with the
// running inputs of the derived fields. It never outlives a refresh.
type cycleState struct {
	primary   []model.Variable
	inflation []model.Variable
	exchange  []model.Variable

	monetaryBase    decimal.NullDecimal
	reserves        decimal.NullDecimal
	wholesaleDollar decimal.NullDecimal

	dropped int
	invalid int
}

// normalize resolves records against the catalog in a single pass. Unknown
// identifiers are dropped. Every mapped record yields one variable; records
// with an unreadable date or a null value are kept, counted as invalid and
// left out of the derived-field inputs.
func normalize(records []model.RawRecord) *cycleState {
	st := &cycleState{
		primary:   []model.Variable{},
		inflation: []model.Variable{},
		exchange:  []model.Variable{},
	}

	for _, rec := range records {
		desc, ok := catalog.Lookup(rec.VariableID)
		if !ok {
			st.dropped++
			continue
		}
		v, err := desc.Normalize(rec)
		if err != nil || !v.Value.Valid {
			st.invalid++
		}

		switch v.Category {
		case model.CategoryPrimary:
			st.primary = append(st.primary, v)
		case model.CategoryInflation:
			st.inflation = append(st.inflation, v)
		case model.CategoryExchange:
			st.exchange = append(st.exchange, v)
		}

		if !v.Value.Valid {
			continue
		}
		switch v.ID {
		case catalog.VarMonetaryBase:
			st.monetaryBase = addNull(st.monetaryBase, v.Value.Decimal)
		case catalog.VarReserves:
			st.reserves = v.Value
		case catalog.VarWholesaleDollar:
			st.wholesaleDollar = v.Value
		}
	}
	return st
}

func addNull(acc decimal.NullDecimal, v decimal.Decimal) decimal.NullDecimal {
	if !acc.Valid {
		return decimal.NewNullDecimal(v)
	}
	return decimal.NewNullDecimal(acc.Decimal.Add(v))
}

// sortByDisplayOrder orders vars in place by display order, keeping the
// relative order of ties.
func sortByDisplayOrder(vars []model.Variable) {
	sort.SliceStable(vars, func(i, j int) bool {
		return vars[i].DisplayOrder < vars[j].DisplayOrder
	})
}
