package main

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"bcrawatch/internal/format"
	"bcrawatch/internal/model"
)

// renderText writes the dashboard cards as plain text.
func renderText(w io.Writer, snap *model.Snapshot, now time.Time, interval time.Duration) {
	if snap.Loading() {
		fmt.Fprintln(w, "Cargando...")
		return
	}

	fmt.Fprintln(w, "Datos BCRA")
	for _, v := range snap.Primary {
		value := v
		if v.ID == 1 && snap.Extras.Reserves.Valid {
			value.Value = snap.Extras.Reserves
			if !snap.Extras.ReservesAsOf.IsZero() {
				value.Timestamp = snap.Extras.ReservesAsOf
			}
		}
		writeCard(w, v.Name, format.VariableValue(value), format.UnitCaption(v.Unit), format.VariableFooter(value, now))
	}

	ex, d := snap.Extras, snap.Derived
	writeCard(w, "BOPREAL", format.Money(d.BoprealDollars), "en millones de dólares", orUnavailable(ex.BoprealLabel))
	writeCard(w, "Depósitos del Gobierno", format.Money(ex.GovernmentDeposits), "en millones de pesos", format.DaysAgo(ex.DepositsAsOf, now))
	writeCard(w, "Base Monetaria Ampliada", format.Money(d.ExtendedMonetaryBase), "en millones de pesos", format.DaysAgo(ex.DepositsAsOf, now))
	writeCard(w, "LEFI BCRA", format.Money(ex.LefiBCRA), "en millones de pesos", format.DaysAgo(ex.DepositsAsOf, now))
	writeCard(w, "LEFI Bancos", format.Money(ex.LefiBanks), "en millones de pesos", format.DaysAgo(ex.DepositsAsOf, now))
	writeCard(w, "Base Monetaria Ampliada / Reservas", ratio(d.ReserveRatio), "", "")

	fmt.Fprintln(w, "\nInflación")
	for _, v := range snap.Inflation {
		writeCard(w, v.Name, format.VariableValue(v), v.ValueLabel, format.VariableFooter(v, now))
	}

	fmt.Fprintln(w, "\nCotizaciones BCRA")
	for _, v := range snap.Exchange {
		writeCard(w, v.Name, format.VariableValue(v), "", format.VariableFooter(v, now))
	}

	if len(snap.Quotes.Quotes) > 0 {
		fmt.Fprintln(w, "\nValores del dólar")
		for _, q := range snap.Quotes.Quotes {
			variation := format.Unavailable
			if q.Variation.Valid {
				variation = format.Trend(q.Variation) + " " + q.Variation.Decimal.String()
			}
			footer := format.Unavailable
			if !q.Timestamp.IsZero() {
				footer = format.DaysAgo(q.Timestamp, now)
			}
			writeCard(w, q.Name, format.QuoteValue(q), variation, footer)
		}
		writeCard(w, "Tarjeta / Ahorro", format.Price(snap.Quotes.CardRate), "30% PAIS + 30% Ganancias", "")
		writeCard(w, "Importador", format.Money(snap.Quotes.ImporterRate), "17,5% PAIS", "")
	}

	updated := format.Unavailable
	if !snap.LastUpdated.IsZero() {
		updated = snap.LastUpdated.Local().Format("02/01/2006 15:04:05")
	}
	fmt.Fprintf(w, "\nÚltima actualización: %s\n", updated)
	if snap.Stale(now, interval) {
		fmt.Fprintln(w, "Los datos pueden estar desactualizados.")
	}
}

func writeCard(w io.Writer, title, value, caption, footer string) {
	line := fmt.Sprintf("  %-36s %s", title, value)
	if caption != "" {
		line += "  " + caption
	}
	if footer != "" {
		line += "  (" + footer + ")"
	}
	fmt.Fprintln(w, line)
}

func ratio(v decimal.NullDecimal) string {
	if !v.Valid {
		return format.Unavailable
	}
	return v.Decimal.StringFixed(2)
}

func orUnavailable(s string) string {
	if s == "" {
		return format.Unavailable
	}
	return s
}
