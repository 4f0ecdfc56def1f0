package loadtest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/tickprobe/internal/client"
	"github.com/guttosm/tickprobe/internal/domain/dto"
	"github.com/guttosm/tickprobe/internal/domain/models"
)

// seqRand replays fixed values; past the end it repeats the last one.
type seqRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *seqRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[min(r.fi, len(r.floats)-1)]
	r.fi++
	return v
}

func (r *seqRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[min(r.ii, len(r.ints)-1)]
	r.ii++
	return v % n
}

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 9, 10, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

type post struct {
	token, symbol string
	req           dto.PriceRequest
}

type fakeAPI struct {
	regStatus int
	token     string
	loginErr  error

	// per-iteration overrides, keyed by 1-based post number
	statuses map[int]int
	errs     map[int]error

	posts []post
}

func (f *fakeAPI) Register(_ context.Context, _ dto.Credentials) (int, error) {
	return f.regStatus, nil
}

func (f *fakeAPI) Login(_ context.Context, _ dto.Credentials) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeAPI) PostPrice(_ context.Context, token, symbol string, req dto.PriceRequest) (int, error) {
	f.posts = append(f.posts, post{token: token, symbol: symbol, req: req})
	n := len(f.posts)
	if err, ok := f.errs[n]; ok {
		return 0, err
	}
	if st, ok := f.statuses[n]; ok {
		return st, nil
	}
	return http.StatusCreated, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = 500 * time.Millisecond
	return cfg
}

func TestGenerator_ConcreteAnomalyScenario(t *testing.T) {
	// 14 ticks of zero drift (0.5 maps to 0), then +0.3 on tick 15.
	floats := make([]float64, 0, 15)
	for i := 0; i < 14; i++ {
		floats = append(floats, 0.5)
	}
	floats = append(floats, 0.8)

	gen := NewGenerator(testConfig(), &seqRand{floats: floats}, newFakeClock())
	var tick models.Tick
	for i := 0; i < 15; i++ {
		tick = gen.Next()
	}

	if !tick.Anomaly || tick.Iteration != 15 {
		t.Fatalf("tick 15 should be the anomaly: %+v", tick)
	}
	if got := tick.Price.StringFixed(2); got != "180.36" {
		t.Fatalf("expected 180.36 after 150.3 * 1.20, got %s", got)
	}
}

func TestGenerator_AnomalyIsAnOutlier(t *testing.T) {
	cfg := testConfig()
	baseline := cfg
	baseline.AnomalyIndex = 0

	withSpike := NewGenerator(cfg, NewRand(42), newFakeClock())
	without := NewGenerator(baseline, NewRand(42), newFakeClock())

	var prev decimal.Decimal
	for i := 1; i <= cfg.Iterations; i++ {
		a, b := withSpike.Next(), without.Next()

		if a.Volume != b.Volume {
			t.Fatalf("tick %d: injection must not change the random stream (volume %d vs %d)", i, a.Volume, b.Volume)
		}
		switch {
		case i < cfg.AnomalyIndex:
			if !a.Price.Equal(b.Price) {
				t.Fatalf("tick %d: series should match before the spike (%s vs %s)", i, a.Price, b.Price)
			}
		case i == cfg.AnomalyIndex:
			ratio := a.Price.Div(b.Price)
			if ratio.LessThan(decimal.NewFromFloat(1.15)) {
				t.Fatalf("spike ratio %s below 15%%", ratio)
			}
			if !a.Anomaly || b.Anomaly {
				t.Fatalf("anomaly flag wrong: with=%v without=%v", a.Anomaly, b.Anomaly)
			}
		}

		if i > 1 {
			change := a.Price.Sub(prev).Abs().Div(prev)
			if i == cfg.AnomalyIndex {
				if change.LessThan(decimal.NewFromFloat(0.15)) {
					t.Fatalf("tick %d: spike change %s too small", i, change)
				}
			} else if change.GreaterThan(decimal.NewFromFloat(0.01)) {
				t.Fatalf("tick %d: organic change %s looks like a spike", i, change)
			}
		}
		prev = a.Price
	}
}

func TestGenerator_Invariants(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 2000
	gen := NewGenerator(cfg, NewRand(7), newFakeClock())

	for i := 1; i <= cfg.Iterations; i++ {
		tick := gen.Next()
		if tick.Volume < int64(cfg.MinVolume) || tick.Volume > int64(cfg.MaxVolume) {
			t.Fatalf("tick %d volume %d out of bounds", i, tick.Volume)
		}
		if !tick.Price.IsPositive() {
			t.Fatalf("tick %d price %s not positive", i, tick.Price)
		}
		if !tick.Price.Equal(tick.Price.Round(2)) {
			t.Fatalf("tick %d price %s not rounded to 2 places", i, tick.Price)
		}
		if tick.Iteration != i || tick.Symbol != "AAPL" {
			t.Fatalf("unexpected tick identity %+v", tick)
		}
	}
}

func TestGenerator_VolumeBoundsInclusive(t *testing.T) {
	cfg := testConfig()
	rnd := &seqRand{ints: []int{0, 4000}}
	gen := NewGenerator(cfg, rnd, newFakeClock())
	if v := gen.Next().Volume; v != 1000 {
		t.Fatalf("lowest draw should give MinVolume, got %d", v)
	}
	if v := gen.Next().Volume; v != 5000 {
		t.Fatalf("highest draw should give MaxVolume, got %d", v)
	}
}

func TestGenerator_PriceFloor(t *testing.T) {
	cfg := testConfig()
	cfg.BasePrice = 0.2
	cfg.AnomalyIndex = 0
	gen := NewGenerator(cfg, &seqRand{floats: []float64{0}}, newFakeClock())
	for i := 0; i < 5; i++ {
		if p := gen.Next().Price; p.StringFixed(2) != "0.01" {
			t.Fatalf("price should be floored at 0.01, got %s", p)
		}
	}
}

func TestDriver_Execute_AllTicksAttempted(t *testing.T) {
	api := &fakeAPI{
		regStatus: http.StatusConflict,
		token:     "jwt",
		statuses:  map[int]int{3: http.StatusInternalServerError, 7: http.StatusOK},
		errs:      map[int]error{15: errors.New("connection refused")},
	}
	clock := newFakeClock()
	d := NewDriver(testConfig(), api, NewRand(1), clock)

	if d.State() != StateUnauthenticated {
		t.Fatalf("initial state %s", d.State())
	}

	rep, err := d.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if d.State() != StateDone {
		t.Fatalf("final state %s", d.State())
	}
	if len(api.posts) != 20 || rep.Total() != 20 {
		t.Fatalf("expected 20 submissions, got posts=%d outcomes=%d", len(api.posts), rep.Total())
	}
	for _, p := range api.posts {
		if p.token != "jwt" || p.symbol != "AAPL" {
			t.Fatalf("unexpected submission %+v", p)
		}
	}

	if got := rep.Outcomes[2]; got.Status != models.OutcomeRejected || got.StatusCode != 500 {
		t.Fatalf("tick 3 should be rejected: %+v", got)
	}
	if got := rep.Outcomes[6]; got.Status != models.OutcomeOK {
		t.Fatalf("tick 7 (200) should be ok: %+v", got)
	}
	spike := rep.Outcomes[14]
	if spike.Status != models.OutcomeTransportError || !spike.Tick.Anomaly || spike.Error == "" {
		t.Fatalf("anomaly tick should be attempted and recorded as transport error: %+v", spike)
	}
	if rep.Succeeded() != 18 || rep.Failed() != 2 {
		t.Fatalf("ok=%d failed=%d", rep.Succeeded(), rep.Failed())
	}

	if len(clock.sleeps) != 19 {
		t.Fatalf("expected 19 pauses between 20 ticks, got %d", len(clock.sleeps))
	}
	for _, s := range clock.sleeps {
		if s != 500*time.Millisecond {
			t.Fatalf("unexpected pause %v", s)
		}
	}
	if !rep.FinishedAt.After(rep.StartedAt) {
		t.Fatalf("finish %v should follow start %v", rep.FinishedAt, rep.StartedAt)
	}
	if rep.RunID == "" {
		t.Fatalf("run id not set")
	}
}

func TestDriver_LoginFailureStopsBeforeTicks(t *testing.T) {
	api := &fakeAPI{
		regStatus: http.StatusConflict,
		loginErr:  &client.StatusError{StatusCode: http.StatusUnauthorized, Body: `{"message":"bad credentials"}`},
	}
	clock := newFakeClock()
	d := NewDriver(testConfig(), api, NewRand(1), clock)

	rep, err := d.Execute(context.Background())
	if err == nil || rep != nil {
		t.Fatalf("expected fatal login error, got rep=%v err=%v", rep, err)
	}
	if !client.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("error should surface server status: %v", err)
	}
	if len(api.posts) != 0 || len(clock.sleeps) != 0 {
		t.Fatalf("no tick may be attempted after login failure (posts=%d)", len(api.posts))
	}
	if d.State() != StateFailed {
		t.Fatalf("state %s, want FAILED", d.State())
	}
}

func TestDriver_WireFormatOfSubmittedTicks(t *testing.T) {
	api := &fakeAPI{token: "jwt", regStatus: http.StatusCreated}
	cfg := testConfig()
	cfg.Iterations = 3
	d := NewDriver(cfg, api, &seqRand{floats: []float64{0.5}, ints: []int{250}}, newFakeClock())

	if _, err := d.Execute(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, p := range api.posts {
		if p.req.Price.String() != "150.00" || p.req.Volume != 1250 || !strings.HasPrefix(p.req.Timestamp, "2026-01-09T10:00:0") {
			t.Fatalf("unexpected wire tick %+v", p.req)
		}
	}
}
