package pipeline

import (
	"github.com/shopspring/decimal"

	"bcrawatch/internal/model"
)

const ratioPlaces = 2

// derive completes the derived fields from this cycle's inputs only. A field
// whose inputs are missing stays invalid.
func derive(st *cycleState, ex model.Extras) model.Derived {
	var d model.Derived

	if st.monetaryBase.Valid && ex.GovernmentDeposits.Valid {
		d.ExtendedMonetaryBase = decimal.NewNullDecimal(st.monetaryBase.Decimal.Add(ex.GovernmentDeposits.Decimal))
	}

	reserves := ex.Reserves
	if !reserves.Valid {
		reserves = st.reserves
	}
	d.ReserveRatio = divide(d.ExtendedMonetaryBase, reserves)
	d.BoprealDollars = divide(ex.Bopreal, st.wholesaleDollar)
	return d
}

func divide(num, den decimal.NullDecimal) decimal.NullDecimal {
	if !num.Valid || !den.Valid || den.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(num.Decimal.Div(den.Decimal).Round(ratioPlaces))
}
