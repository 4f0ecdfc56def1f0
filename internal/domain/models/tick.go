package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tick is one synthetic price observation for a symbol.
//
// Fields:
//   - Iteration: 1-based position of the tick in its run.
//   - Symbol: ticker code the tick is submitted for (e.g., "AAPL").
//   - Price: positive price rounded to 2 fractional digits.
//   - Volume: traded quantity within the run's inclusive bounds.
//   - Timestamp: wall-clock time the tick was generated.
//   - Anomaly: true for the single engineered spike of a run.
type Tick struct {
	Iteration int             `json:"iteration"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
	Anomaly   bool            `json:"anomaly,omitempty"`
}

// MarshalJSON renders Price as a JSON number with exactly 2 fractional
// digits. decimal.Decimal alone would emit a quoted, trimmed "150.1".
func (t Tick) MarshalJSON() ([]byte, error) {
	type plain Tick
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(t), Price: json.Number(t.Price.StringFixed(2))})
}
