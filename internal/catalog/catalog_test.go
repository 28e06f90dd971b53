package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bcrawatch/internal/model"
)

func TestLookupKnownAndUnknown(t *testing.T) {
	d, ok := Lookup(VarReserves)
	if !ok {
		t.Fatalf("reserves descriptor missing")
	}
	if d.Name != "Reservas Internacionales" || d.Unit != model.UnitDollars || d.Category != model.CategoryPrimary {
		t.Fatalf("unexpected reserves descriptor: %#v", d)
	}
	if _, ok := Lookup(99); ok {
		t.Fatalf("id 99 must not be in the catalog")
	}
}

func TestAllOrderedByCategoryThenDisplayOrder(t *testing.T) {
	all := All()
	if len(all) != 7 {
		t.Fatalf("expected 7 descriptors, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.Category > cur.Category || (prev.Category == cur.Category && prev.DisplayOrder >= cur.DisplayOrder) {
			t.Fatalf("descriptors out of order at %d: %#v then %#v", i, prev, cur)
		}
	}
}

func TestDisplayOrderUniqueWithinCategory(t *testing.T) {
	seen := map[model.Category]map[int]int{}
	for _, d := range All() {
		if seen[d.Category] == nil {
			seen[d.Category] = map[int]int{}
		}
		if other, dup := seen[d.Category][d.DisplayOrder]; dup {
			t.Fatalf("ids %d and %d share display order %d", other, d.ID, d.DisplayOrder)
		}
		seen[d.Category][d.DisplayOrder] = d.ID
	}
}

func TestNormalize(t *testing.T) {
	d, _ := Lookup(VarMonthlyInflation)
	v, err := d.Normalize(model.RawRecord{VariableID: VarMonthlyInflation, Value: decimal.NewNullDecimal(decimal.RequireFromString("4.2")), Date: "2024-05-31"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !v.IsMonthly || !v.IsPercentage || v.ValueLabel != "Mensual" {
		t.Fatalf("unexpected flags: %#v", v)
	}
	want := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	if !v.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", v.Timestamp, want)
	}

	bad, err := d.Normalize(model.RawRecord{VariableID: VarMonthlyInflation, Date: "mayo"})
	if err == nil {
		t.Fatalf("expected error for malformed date")
	}
	if bad.ID != VarMonthlyInflation || bad.Name == "" || !bad.Timestamp.IsZero() || bad.Value.Valid {
		t.Fatalf("malformed date should still resolve the descriptor: %#v", bad)
	}
}

func TestParseDateLayouts(t *testing.T) {
	cases := []string{"2024-06-01", "2024-06-01T00:00:00Z", "2024-06-01T00:00:00", "01/06/2024"}
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, c := range cases {
		got, err := ParseDate(c)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", c, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", c, got, want)
		}
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty date")
	}
}
