package report

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tickprobe/internal/domain/models"
)

// Direction of a flagged price move.
type Direction string

const (
	SpikeUp   Direction = "SPIKE_UP"
	SpikeDown Direction = "SPIKE_DOWN"
)

// Spike is a tick whose price moved more than the threshold since the previous tick.
type Spike struct {
	Iteration     int             `json:"iteration"`
	From          decimal.Decimal `json:"from"`
	To            decimal.Decimal `json:"to"`
	ChangePercent float64         `json:"change_percent"`
	Direction     Direction       `json:"direction"`
}

// MarshalJSON renders From and To as JSON numbers with 2 fractional digits.
func (s Spike) MarshalJSON() ([]byte, error) {
	type plain Spike
	return json.Marshal(struct {
		plain
		From json.Number `json:"from"`
		To   json.Number `json:"to"`
	}{plain: plain(s), From: json.Number(s.From.StringFixed(2)), To: json.Number(s.To.StringFixed(2))})
}

var hundred = decimal.NewFromInt(100)

// DetectSpikes flags every tick whose price changed by more than
// thresholdPercent relative to the tick before it. The first tick has no
// predecessor and is never flagged.
func DetectSpikes(ticks []models.Tick, thresholdPercent float64) []Spike {
	var out []Spike
	threshold := decimal.NewFromFloat(thresholdPercent)

	for i := 1; i < len(ticks); i++ {
		prev, cur := ticks[i-1].Price, ticks[i].Price
		if prev.IsZero() {
			continue
		}
		change := cur.Sub(prev).Div(prev).Mul(hundred)
		if change.Abs().LessThanOrEqual(threshold) {
			continue
		}

		dir := SpikeUp
		if change.IsNegative() {
			dir = SpikeDown
		}
		pct, _ := change.Round(2).Float64()
		out = append(out, Spike{
			Iteration:     ticks[i].Iteration,
			From:          prev,
			To:            cur,
			ChangePercent: pct,
			Direction:     dir,
		})
	}
	return out
}
