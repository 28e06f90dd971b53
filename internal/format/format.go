// Package format renders snapshot values for display. Every helper renders
// an absent value as Unavailable so callers never special-case missing data.
package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"bcrawatch/internal/model"
)

// Unavailable is shown in place of any value that is missing.
const Unavailable = "..."

var months = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return Unavailable
	}
	return months[m-1]
}

// Thousands truncates v to an integer and groups digits with dots:
// 30000.9 renders as "30.000".
func Thousands(v decimal.NullDecimal) string {
	if !v.Valid {
		return Unavailable
	}
	return humanize.FormatInteger("#.###,", int(v.Decimal.IntPart()))
}

// Money is Thousands with a currency prefix.
func Money(v decimal.NullDecimal) string {
	return "$ " + Thousands(v)
}

// Price renders a quote price with two decimals: "$ 1.420,50".
func Price(v decimal.NullDecimal) string {
	if !v.Valid {
		return "$ " + Unavailable
	}
	f, _ := v.Decimal.Float64()
	return "$ " + humanize.FormatFloat("#.###,##", f)
}

func Percent(v decimal.NullDecimal) string {
	if !v.Valid {
		return Unavailable + "%"
	}
	return v.Decimal.String() + "%"
}

// Trend maps the sign of a variation to ▼, ~ or ▲.
func Trend(v decimal.NullDecimal) string {
	if !v.Valid {
		return Unavailable
	}
	switch v.Decimal.Sign() {
	case -1:
		return "▼"
	case 0:
		return "~"
	default:
		return "▲"
	}
}

// DaysAgo describes how many whole days separate t from now.
func DaysAgo(t, now time.Time) string {
	if t.IsZero() {
		return Unavailable
	}
	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days < 1:
		return "Hoy"
	case days == 1:
		return "Hace 1 día"
	default:
		return fmt.Sprintf("Hace %d días", days)
	}
}

// UnitCaption is the subtitle shown under monetary balances.
func UnitCaption(u model.Unit) string {
	switch u {
	case model.UnitDollars:
		return "en millones de dólares"
	case model.UnitPesos:
		return "en millones de pesos"
	default:
		return ""
	}
}

// VariableValue renders the headline value of a variable.
func VariableValue(v model.Variable) string {
	if v.IsPercentage {
		return Percent(v.Value)
	}
	return Money(v.Value)
}

// VariableFooter renders the date line of a variable: the month for monthly
// series, the age in days otherwise.
func VariableFooter(v model.Variable, now time.Time) string {
	if v.Timestamp.IsZero() {
		return Unavailable
	}
	if v.IsMonthly {
		return MonthName(v.Timestamp.Month())
	}
	return DaysAgo(v.Timestamp, now)
}

// QuoteValue renders "$ ask / $ bid" for two-sided quotes and the price
// otherwise.
func QuoteValue(q model.Quote) string {
	if q.TwoSided() {
		return Price(q.Ask) + " / " + Price(q.Bid)
	}
	return Price(q.Price)
}
