package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/guttosm/tickprobe/internal/domain/models"
	"github.com/guttosm/tickprobe/internal/seed"
)

const (
	green  = "\033[92m"
	red    = "\033[91m"
	yellow = "\033[93m"
	reset  = "\033[0m"
)

// painter wraps text in ANSI colors when enabled.
type painter bool

func (p painter) paint(color, s string) string {
	if !p {
		return s
	}
	return color + s + reset
}

// colorFor enables colors only when w is a terminal.
func colorFor(w io.Writer) painter {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return painter(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// WriteText renders a human-readable run report: one line per tick, the
// anomaly marker, a summary and the spike check.
func WriteText(w io.Writer, rep *models.Report, spikes []Spike, thresholdPercent float64) error {
	p := colorFor(w)
	var b strings.Builder
	n := rep.Total()

	fmt.Fprintf(&b, "🚀 Load test %s: %d iterations (run %s)\n", rep.Symbol, n, rep.RunID)
	for _, o := range rep.Outcomes {
		prefix := fmt.Sprintf("[%d/%d]", o.Tick.Iteration, n)
		if o.Tick.Anomaly {
			b.WriteString(p.paint(yellow, fmt.Sprintf("%s ⚠️  anomaly (spike) injected", prefix)) + "\n")
		}
		switch o.Status {
		case models.OutcomeOK:
			fmt.Fprintf(&b, "%s Sent %s: $%s -> Server OK\n", prefix, o.Tick.Symbol, o.Tick.Price.StringFixed(2))
		case models.OutcomeRejected:
			b.WriteString(p.paint(red, fmt.Sprintf("%s Error: %d", prefix, o.StatusCode)) + "\n")
		default:
			b.WriteString(p.paint(red, fmt.Sprintf("%s Connection error: %s", prefix, o.Error)) + "\n")
		}
	}

	summary := fmt.Sprintf("✅ Done: %d/%d accepted, %d failed in %s", rep.Succeeded(), n, rep.Failed(), rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))
	if rep.Failed() > 0 {
		summary = strings.Replace(summary, "✅", "❌", 1)
		b.WriteString(p.paint(red, summary) + "\n")
	} else {
		b.WriteString(p.paint(green, summary) + "\n")
	}

	if len(spikes) == 0 {
		fmt.Fprintf(&b, "No price move above %.1f%%\n", thresholdPercent)
	} else {
		fmt.Fprintf(&b, "Price moves above %.1f%%:\n", thresholdPercent)
		for _, s := range spikes {
			b.WriteString(p.paint(yellow, fmt.Sprintf("  #%d %s %s -> %s (%+.2f%%)", s.Iteration, s.Direction, s.From.StringFixed(2), s.To.StringFixed(2), s.ChangePercent)) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// jsonReport is the machine-readable form of a run.
type jsonReport struct {
	*models.Report
	Total     int     `json:"total"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Spikes    []Spike `json:"spikes"`
}

// WriteJSON renders the run as an indented JSON document.
func WriteJSON(w io.Writer, rep *models.Report, spikes []Spike) error {
	if spikes == nil {
		spikes = []Spike{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Report:    rep,
		Total:     rep.Total(),
		Succeeded: rep.Succeeded(),
		Failed:    rep.Failed(),
		Spikes:    spikes,
	})
}

// WriteSeedText renders the seeder results, one line per symbol.
func WriteSeedText(w io.Writer, results []seed.SymbolResult) error {
	p := colorFor(w)
	var b strings.Builder
	for _, r := range results {
		switch r.Status {
		case seed.StatusCreated:
			b.WriteString(p.paint(green, fmt.Sprintf("  ✅ %s created.", r.Symbol.Code)) + "\n")
		case seed.StatusForbidden:
			b.WriteString(p.paint(red, fmt.Sprintf("  ❌ 403 Forbidden for %s (token rejected).", r.Symbol.Code)) + "\n")
		default:
			detail := r.Body
			if r.Err != nil {
				detail = r.Err.Error()
			}
			b.WriteString(p.paint(yellow, fmt.Sprintf("  ⚠️ %s: %d - %s", r.Symbol.Code, r.StatusCode, detail)) + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
