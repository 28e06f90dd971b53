package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Point is one observation of a time series.
type Point struct {
	Date  time.Time       `json:"date"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Series is the history of one variable over a date window.
type Series struct {
	VariableID int       `json:"variable_id"`
	Name       string    `json:"name"`
	ValueLabel string    `json:"value_label"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Points     []Point   `json:"points"`
}
