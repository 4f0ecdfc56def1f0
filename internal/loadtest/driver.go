package loadtest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guttosm/tickprobe/internal/domain/dto"
	"github.com/guttosm/tickprobe/internal/domain/models"
	"github.com/guttosm/tickprobe/internal/logger"
	"github.com/guttosm/tickprobe/internal/session"
)

// Driver runs the load/anomaly scenario against the price API.
//
// Lifecycle: UNAUTHENTICATED -> AUTHENTICATED -> DONE, or FAILED when login
// fails. A Driver is not safe for concurrent use; runs are strictly sequential.
type Driver struct {
	cfg   Config
	api   API
	rnd   Rand
	clock Clock

	state State
	token string
}

// NewDriver returns a driver in the UNAUTHENTICATED state.
func NewDriver(cfg Config, api API, rnd Rand, clock Clock) *Driver {
	return &Driver{
		cfg:   cfg,
		api:   api,
		rnd:   rnd,
		clock: clock,
		state: StateUnauthenticated,
	}
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return d.state }

// Authenticate ensures the account exists and logs in.
//
// A failed login moves the driver to FAILED and returns the error; the
// error carries the server status and body when there was a response.
func (d *Driver) Authenticate(ctx context.Context) (string, error) {
	token, err := session.Open(ctx, d.api, dto.Credentials{Username: d.cfg.Username, Password: d.cfg.Password})
	if err != nil {
		d.state = StateFailed
		return "", err
	}
	d.token = token
	d.state = StateAuthenticated
	return token, nil
}

// Execute authenticates and then runs the full tick sequence.
//
// On login failure no tick is generated or submitted and the report is nil.
func (d *Driver) Execute(ctx context.Context) (*models.Report, error) {
	token, err := d.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return d.Run(ctx, token), nil
}

// Run generates and submits cfg.Iterations ticks with token.
//
// A failed tick (rejected status or transport error) is recorded and the
// loop continues; the anomaly tick is submitted and recorded like any other.
// The driver sleeps cfg.Interval between submissions.
func (d *Driver) Run(ctx context.Context, token string) *models.Report {
	d.token = token
	d.state = StateAuthenticated

	gen := NewGenerator(d.cfg, d.rnd, d.clock)
	report := &models.Report{
		RunID:     uuid.NewString(),
		Symbol:    d.cfg.Symbol,
		StartedAt: d.clock.Now(),
		Outcomes:  make([]models.Outcome, 0, d.cfg.Iterations),
	}

	logger.L().Info().
		Str("run_id", report.RunID).
		Str("symbol", d.cfg.Symbol).
		Int("iterations", d.cfg.Iterations).
		Int("anomaly_index", d.cfg.AnomalyIndex).
		Dur("interval", d.cfg.Interval).
		Msg("load test started")

	for i := 1; i <= d.cfg.Iterations; i++ {
		tick := gen.Next()
		if tick.Anomaly {
			logger.L().Warn().
				Int("iteration", i).
				Float64("multiplier", d.cfg.AnomalyMultiplier).
				Str("price", tick.Price.StringFixed(2)).
				Msg("injecting anomaly spike")
		}

		outcome := d.submit(ctx, tick)
		report.Outcomes = append(report.Outcomes, outcome)
		d.logOutcome(outcome)

		if i < d.cfg.Iterations {
			d.clock.Sleep(d.cfg.Interval)
		}
	}

	report.FinishedAt = d.clock.Now()
	d.state = StateDone

	logger.L().Info().
		Str("run_id", report.RunID).
		Int("total", report.Total()).
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("load test finished")

	return report
}

func (d *Driver) submit(ctx context.Context, tick models.Tick) models.Outcome {
	start := d.clock.Now()
	status, err := d.api.PostPrice(ctx, d.token, tick.Symbol, dto.NewPriceRequest(tick))
	outcome := models.Outcome{
		Tick:       tick,
		StatusCode: status,
		Latency:    d.clock.Now().Sub(start),
	}

	switch {
	case err != nil:
		outcome.Status = models.OutcomeTransportError
		outcome.StatusCode = 0
		outcome.Error = err.Error()
	case status == http.StatusOK || status == http.StatusCreated:
		outcome.Status = models.OutcomeOK
	default:
		outcome.Status = models.OutcomeRejected
	}
	return outcome
}

func (d *Driver) logOutcome(o models.Outcome) {
	var ev *zerolog.Event
	var msg string
	switch o.Status {
	case models.OutcomeOK:
		ev, msg = logger.L().Info(), "tick accepted"
	case models.OutcomeRejected:
		ev, msg = logger.L().Error(), "tick rejected"
	default:
		ev, msg = logger.L().Error().Str("error", o.Error), "tick not delivered"
	}

	ev.Int("iteration", o.Tick.Iteration).
		Int("of", d.cfg.Iterations).
		Str("symbol", o.Tick.Symbol).
		Str("price", o.Tick.Price.StringFixed(2)).
		Int64("volume", o.Tick.Volume).
		Int("status", o.StatusCode).
		Int64("latency_ms", o.Latency.Milliseconds()).
		Msg(msg)
}
