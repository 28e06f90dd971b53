// internal/model/common.go
// @tag models, data_structure, core
package model

import (
	"fmt"
	"strings"
)

// Unit is the measurement unit a variable is expressed in.
type Unit int

const (
	UnitPesos Unit = iota
	UnitDollars
	UnitPercent
)

var unitNames = map[Unit]string{
	UnitPesos:   "pesos",
	UnitDollars: "dollars",
	UnitPercent: "percent",
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("unit(%d)", int(u))
}

func (u Unit) MarshalText() ([]byte, error) {
	if _, ok := unitNames[u]; !ok {
		return nil, fmt.Errorf("unknown unit %d", int(u))
	}
	return []byte(u.String()), nil
}

func (u *Unit) UnmarshalText(text []byte) error {
	for k, v := range unitNames {
		if strings.EqualFold(v, string(text)) {
			*u = k
			return nil
		}
	}
	return fmt.Errorf("unknown unit %q", string(text))
}

// Category groups variables into the dashboard sections.
type Category int

const (
	CategoryPrimary Category = iota
	CategoryInflation
	CategoryExchange
)

var categoryNames = map[Category]string{
	CategoryPrimary:   "primary",
	CategoryInflation: "inflation",
	CategoryExchange:  "exchange",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func (c Category) MarshalText() ([]byte, error) {
	if _, ok := categoryNames[c]; !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for k, v := range categoryNames {
		if strings.EqualFold(v, string(text)) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", string(text))
}
