package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTick_MarshalJSON(t *testing.T) {
	cases := []struct {
		name  string
		price string
		want  string
	}{
		{name: "trailing zero kept", price: "150.1", want: `"price":150.10`},
		{name: "whole number", price: "180", want: `"price":180.00`},
		{name: "already two digits", price: "149.95", want: `"price":149.95`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := Tick{
				Iteration: 1,
				Symbol:    "AAPL",
				Price:     decimal.RequireFromString(tc.price),
				Volume:    1200,
				Timestamp: time.Date(2026, 1, 9, 10, 0, 0, 0, time.UTC),
			}
			b, err := json.Marshal(tk)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			out := string(b)
			if !strings.Contains(out, tc.want) {
				t.Fatalf("want %s in %s", tc.want, out)
			}
			if strings.Count(out, `"price"`) != 1 || !strings.Contains(out, `"symbol":"AAPL"`) || strings.Contains(out, "anomaly") {
				t.Fatalf("unexpected fields in %s", out)
			}
		})
	}
}

func TestOutcome_MarshalJSONUsesTickPrice(t *testing.T) {
	o := Outcome{Tick: Tick{Iteration: 3, Price: decimal.RequireFromString("180.3"), Anomaly: true}, Status: OutcomeOK, StatusCode: 201}
	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back struct {
		Tick struct {
			Price   json.Number `json:"price"`
			Anomaly bool        `json:"anomaly"`
		} `json:"tick"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Tick.Price != "180.30" || !back.Tick.Anomaly || back.Status != "ok" {
		t.Fatalf("unexpected %+v from %s", back, b)
	}
}
