package loadtest

import (
	"github.com/shopspring/decimal"

	"github.com/guttosm/tickprobe/internal/domain/models"
)

// minPrice keeps the series positive when drift would take it to zero.
var minPrice = decimal.New(1, -2)

// Generator produces the tick series of one run.
//
// It owns the running price. Every tick draws exactly one Float64 (drift)
// and one Intn (volume), whether or not it is the anomaly, so two generators
// fed the same sequence differ only by the spike factor from AnomalyIndex on.
type Generator struct {
	cfg   Config
	rnd   Rand
	clock Clock

	price      decimal.Decimal
	maxDrift   decimal.Decimal
	multiplier decimal.Decimal
	next       int
}

func NewGenerator(cfg Config, rnd Rand, clock Clock) *Generator {
	return &Generator{
		cfg:        cfg,
		rnd:        rnd,
		clock:      clock,
		price:      decimal.NewFromFloat(cfg.BasePrice),
		maxDrift:   decimal.NewFromFloat(cfg.MaxDrift),
		multiplier: decimal.NewFromFloat(cfg.AnomalyMultiplier),
		next:       1,
	}
}

// Next applies drift (and the spike on the anomaly iteration) and returns the tick.
func (g *Generator) Next() models.Tick {
	i := g.next
	g.next++

	g.price = g.price.Add(g.drift())

	anomaly := g.cfg.AnomalyIndex > 0 && i == g.cfg.AnomalyIndex
	if anomaly {
		g.price = g.price.Mul(g.multiplier)
	}
	if g.price.LessThan(minPrice) {
		g.price = minPrice
	}

	return models.Tick{
		Iteration: i,
		Symbol:    g.cfg.Symbol,
		Price:     g.price.Round(2),
		Volume:    g.volume(),
		Timestamp: g.clock.Now(),
		Anomaly:   anomaly,
	}
}

// Price is the unrounded running price.
func (g *Generator) Price() decimal.Decimal { return g.price }

// drift is uniform in [-MaxDrift, +MaxDrift).
func (g *Generator) drift() decimal.Decimal {
	span := g.maxDrift.Add(g.maxDrift)
	return decimal.NewFromFloat(g.rnd.Float64()).Mul(span).Sub(g.maxDrift)
}

// volume is uniform in [MinVolume, MaxVolume].
func (g *Generator) volume() int64 {
	span := g.cfg.MaxVolume - g.cfg.MinVolume + 1
	if span < 1 {
		span = 1
	}
	return int64(g.cfg.MinVolume + g.rnd.Intn(span))
}
