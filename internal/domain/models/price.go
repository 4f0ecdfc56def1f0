package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is a tick accepted and stored by the stub API.
type Price struct {
	ID         int64
	SymbolCode string
	Price      decimal.Decimal
	Volume     int64
	Timestamp  time.Time
}
