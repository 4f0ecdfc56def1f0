package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/guttosm/tickprobe/config"
	"github.com/guttosm/tickprobe/internal/client"
	"github.com/guttosm/tickprobe/internal/domain/dto"
	"github.com/guttosm/tickprobe/internal/domain/models"
	"github.com/guttosm/tickprobe/internal/loadtest"
	"github.com/guttosm/tickprobe/internal/seed"
)

func stubConfig() config.Config {
	return config.Config{
		API: config.APIConfig{Username: "tester", Password: "password123", Timeout: 5 * time.Second},
		LoadTest: config.LoadTestConfig{
			Symbol:            "AAPL",
			Iterations:        20,
			AnomalyIndex:      15,
			AnomalyMultiplier: 1.20,
			BasePrice:         150,
			MaxDrift:          0.5,
			MinVolume:         1000,
			MaxVolume:         5000,
			Seed:              42,
		},
		Seed: config.SeedConfig{
			Username: "admin_nou",
			Password: "password123",
			Symbols: []config.SymbolConfig{
				{Code: "AAPL", Name: "Apple Inc.", Type: "STOCK"},
				{Code: "BTC", Name: "Bitcoin", Type: "CRYPTO"},
				{Code: "GOOGL", Name: "Alphabet Inc.", Type: "STOCK"},
			},
		},
		Stub: config.StubConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
	}
}

// startStub serves a fresh stub API and points cfg.API at it.
func startStub(t *testing.T, cfg *config.Config) *client.Client {
	t.Helper()
	old := stubHashCost
	stubHashCost = bcrypt.MinCost
	t.Cleanup(func() { stubHashCost = old })

	router, cleanup, err := InitializeStub(*cfg)
	if err != nil {
		t.Fatalf("InitializeStub: %v", err)
	}
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cleanup()
	})
	cfg.API.BaseURL = srv.URL + "/api"
	return NewClient(*cfg)
}

func TestInitializeStub_RequiresSecret(t *testing.T) {
	cfg := stubConfig()
	cfg.Stub.JWTSecret = ""
	if r, cleanup, err := InitializeStub(cfg); err == nil || r != nil || cleanup != nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestInitializeStub_HealthEndpoints(t *testing.T) {
	cfg := stubConfig()
	router, cleanup, err := InitializeStub(cfg)
	if err != nil {
		t.Fatalf("InitializeStub: %v", err)
	}
	defer cleanup()

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, w.Code)
		}
	}
}

func TestSeedThenLoad_EndToEnd(t *testing.T) {
	cfg := stubConfig()
	api := startStub(t, &cfg)
	ctx := context.Background()

	results, err := NewSeeder(cfg, api).Run(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 seed results, got %d", len(results))
	}
	for _, r := range results {
		if r.Status != seed.StatusCreated {
			t.Fatalf("symbol %s not created: %+v", r.Symbol.Code, r)
		}
	}

	// seeding twice reports conflicts as failures without aborting
	again, err := NewSeeder(cfg, api).Run(ctx)
	if err != nil || len(again) != 3 || again[2].Status != seed.StatusFailed || again[2].StatusCode != http.StatusConflict {
		t.Fatalf("second seed: %+v %v", again, err)
	}

	driver := NewDriver(cfg, api)
	rep, err := driver.Execute(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if driver.State() != loadtest.StateDone {
		t.Fatalf("state %s", driver.State())
	}
	if rep.Total() != 20 || rep.Succeeded() != 20 {
		t.Fatalf("total=%d ok=%d", rep.Total(), rep.Succeeded())
	}
	if !rep.Outcomes[14].Tick.Anomaly || rep.Outcomes[14].StatusCode != http.StatusCreated {
		t.Fatalf("anomaly tick not accepted: %+v", rep.Outcomes[14])
	}

	stored := fetchPrices(t, api, cfg)
	if len(stored) != 20 {
		t.Fatalf("stub stored %d prices, want 20", len(stored))
	}
	for i, p := range stored {
		if p.Price.String() != rep.Outcomes[i].Tick.Price.StringFixed(2) {
			t.Fatalf("price %d: stored %s, sent %s", i+1, p.Price, rep.Outcomes[i].Tick.Price.StringFixed(2))
		}
	}
}

func TestLoad_UnknownSymbolIsRejectedButAttempted(t *testing.T) {
	cfg := stubConfig()
	cfg.LoadTest.Iterations = 5
	cfg.LoadTest.AnomalyIndex = 3
	api := startStub(t, &cfg)

	rep, err := NewDriver(cfg, api).Execute(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rep.Total() != 5 || rep.Failed() != 5 {
		t.Fatalf("total=%d failed=%d", rep.Total(), rep.Failed())
	}
	for _, o := range rep.Outcomes {
		if o.Status != models.OutcomeRejected || o.StatusCode != http.StatusBadRequest {
			t.Fatalf("unexpected outcome %+v", o)
		}
	}
}

func TestLoad_WrongPasswordIsFatal(t *testing.T) {
	cfg := stubConfig()
	api := startStub(t, &cfg)

	// the account exists with a different password, so register conflicts and login fails
	if _, err := api.Register(context.Background(), dto.Credentials{Username: "tester", Password: "other"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	driver := NewDriver(cfg, api)
	rep, err := driver.Execute(context.Background())
	if err == nil || rep != nil {
		t.Fatalf("expected login failure")
	}
	if !client.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if driver.State() != loadtest.StateFailed {
		t.Fatalf("state %s", driver.State())
	}
}

func fetchPrices(t *testing.T, api *client.Client, cfg config.Config) []dto.PriceResponse {
	t.Helper()
	tok, err := api.Login(context.Background(), dto.Credentials{Username: cfg.API.Username, Password: cfg.API.Password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, cfg.API.BaseURL+"/prices/"+cfg.LoadTest.Symbol, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get prices: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var out []dto.PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode prices: %v", err)
	}
	return out
}
