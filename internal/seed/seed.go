package seed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/guttosm/tickprobe/internal/domain/dto"
	"github.com/guttosm/tickprobe/internal/domain/models"
	"github.com/guttosm/tickprobe/internal/logger"
	"github.com/guttosm/tickprobe/internal/session"
)

// API is the part of the price API client the seeder calls.
type API interface {
	session.Authenticator
	CreateSymbol(ctx context.Context, token string, req dto.SymbolRequest) (int, string, error)
}

// Status classifies the result of creating one symbol.
type Status string

const (
	StatusCreated   Status = "created"
	StatusForbidden Status = "forbidden"
	StatusFailed    Status = "failed"
)

// SymbolResult is the outcome for one seeded symbol.
type SymbolResult struct {
	Symbol     models.Symbol
	Status     Status
	StatusCode int
	Body       string
	Err        error
}

// Seeder creates the reference symbols the load test posts prices for.
type Seeder struct {
	api     API
	creds   dto.Credentials
	symbols []models.Symbol
}

func NewSeeder(api API, creds dto.Credentials, symbols []models.Symbol) *Seeder {
	return &Seeder{api: api, creds: creds, symbols: symbols}
}

// Run logs in and creates every symbol in order.
//
// Login failure is returned before any symbol is attempted. A failure on one
// symbol is recorded in its result and the next symbol is still attempted.
func (s *Seeder) Run(ctx context.Context) ([]SymbolResult, error) {
	token, err := session.Open(ctx, s.api, s.creds)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	results := make([]SymbolResult, 0, len(s.symbols))
	for _, sym := range s.symbols {
		res := s.create(ctx, token, sym)
		results = append(results, res)

		var ev *zerolog.Event
		switch res.Status {
		case StatusCreated:
			ev = logger.L().Info()
		case StatusForbidden:
			ev = logger.L().Error().Str("reason", "token rejected")
		default:
			ev = logger.L().Warn().Str("body", res.Body).AnErr("error", res.Err)
		}
		ev.Str("symbol", sym.Code).Int("status", res.StatusCode).Str("result", string(res.Status)).Msg("symbol seeded")
	}
	return results, nil
}

func (s *Seeder) create(ctx context.Context, token string, sym models.Symbol) SymbolResult {
	res := SymbolResult{Symbol: sym}
	status, body, err := s.api.CreateSymbol(ctx, token, dto.NewSymbolRequest(sym))
	res.StatusCode, res.Body = status, body

	switch {
	case err != nil:
		res.Status, res.Err = StatusFailed, err
	case status == http.StatusOK || status == http.StatusCreated:
		res.Status = StatusCreated
	case status == http.StatusForbidden:
		res.Status = StatusForbidden
	default:
		res.Status = StatusFailed
	}
	return res
}
