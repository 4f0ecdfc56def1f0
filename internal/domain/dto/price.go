package dto

import (
	"encoding/json"
	"time"

	"github.com/guttosm/tickprobe/internal/domain/models"
)

// TimestampLayout is the textual timestamp format of a submitted tick
// (ISO-8601 without zone or fraction).
const TimestampLayout = "2006-01-02T15:04:05"

// PriceRequest is the body of POST /prices/{symbolCode}.
//
// Price is a json.Number so the fixed 2-digit rendering of the tick reaches
// the wire unchanged (150.10 stays 150.10, not 150.1).
type PriceRequest struct {
	Price     json.Number `json:"price" example:"150.25"`
	Volume    int64       `json:"volume" example:"2500"`
	Timestamp string      `json:"timestamp" example:"2026-01-09T10:15:00"`
}

// NewPriceRequest converts a generated tick into its wire form.
func NewPriceRequest(t models.Tick) PriceRequest {
	return PriceRequest{
		Price:     json.Number(t.Price.StringFixed(2)),
		Volume:    t.Volume,
		Timestamp: t.Timestamp.Format(TimestampLayout),
	}
}

// PriceResponse is a stored price as returned by the price API.
type PriceResponse struct {
	ID         int64       `json:"id"`
	SymbolCode string      `json:"symbolCode"`
	Price      json.Number `json:"price"`
	Volume     int64       `json:"volume"`
	Timestamp  string      `json:"timestamp"`
}

// ParseTimestamp parses a tick timestamp in TimestampLayout as local time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}
