package loadtest

import (
	"context"
	"math/rand"
	"time"

	"github.com/guttosm/tickprobe/internal/domain/dto"
)

// Rand is the randomness the generator draws from; tests supply fixed sequences.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Clock provides timestamps and pacing; tests supply a fake that never sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// API is the part of the price API client the driver calls.
type API interface {
	Register(ctx context.Context, creds dto.Credentials) (int, error)
	Login(ctx context.Context, creds dto.Credentials) (string, error)
	PostPrice(ctx context.Context, token, symbol string, req dto.PriceRequest) (int, error)
}

var _ Rand = (*rand.Rand)(nil)

// NewRand returns a seeded source; seed 0 seeds from the current time.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RealClock uses the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time        { return time.Now() }
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// State is the driver lifecycle.
type State string

const (
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateAuthenticated   State = "AUTHENTICATED"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

// Config describes one run. See DefaultConfig for the stock scenario.
type Config struct {
	Username string
	Password string
	Symbol   string

	Iterations        int
	AnomalyIndex      int // 1-based; 0 disables the spike
	AnomalyMultiplier float64
	BasePrice         float64
	MaxDrift          float64
	MinVolume         int
	MaxVolume         int
	Interval          time.Duration
}

// DefaultConfig is 20 ticks of AAPL from 150.00, drift ±0.5, a +20% spike
// at tick 15, volumes 1000..5000 and half a second between requests.
func DefaultConfig() Config {
	return Config{
		Username:          "tester",
		Password:          "password123",
		Symbol:            "AAPL",
		Iterations:        20,
		AnomalyIndex:      15,
		AnomalyMultiplier: 1.20,
		BasePrice:         150.00,
		MaxDrift:          0.5,
		MinVolume:         1000,
		MaxVolume:         5000,
		Interval:          500 * time.Millisecond,
	}
}
