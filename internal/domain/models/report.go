package models

import "time"

// OutcomeStatus classifies the result of submitting one tick.
type OutcomeStatus string

const (
	// OutcomeOK means the server answered 200 or 201.
	OutcomeOK OutcomeStatus = "ok"
	// OutcomeRejected means the server answered with any other status.
	OutcomeRejected OutcomeStatus = "rejected"
	// OutcomeTransportError means no HTTP response was received.
	OutcomeTransportError OutcomeStatus = "transport_error"
)

// Outcome records what happened to a single tick submission.
type Outcome struct {
	Tick       Tick          `json:"tick"`
	Status     OutcomeStatus `json:"status"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
}

// Succeeded reports whether the server accepted the tick.
func (o Outcome) Succeeded() bool { return o.Status == OutcomeOK }

// Report is the ordered result of one load/anomaly run.
type Report struct {
	RunID      string    `json:"run_id"`
	Symbol     string    `json:"symbol"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Total is the number of ticks generated and attempted.
func (r *Report) Total() int { return len(r.Outcomes) }

// Succeeded counts accepted ticks.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Failed counts rejected ticks and transport errors.
func (r *Report) Failed() int { return r.Total() - r.Succeeded() }

// Ticks returns the generated ticks in submission order.
func (r *Report) Ticks() []Tick {
	out := make([]Tick, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out = append(out, o.Tick)
	}
	return out
}

// RunSummary is a stored run without its ticks.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Symbol     string    `json:"symbol"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

// Summary derives the stored form of the report.
func (r *Report) Summary() RunSummary {
	return RunSummary{
		RunID:      r.RunID,
		Symbol:     r.Symbol,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Total:      r.Total(),
		Succeeded:  r.Succeeded(),
		Failed:     r.Failed(),
	}
}
