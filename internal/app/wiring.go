package app

import (
	"github.com/guttosm/tickprobe/config"
	"github.com/guttosm/tickprobe/internal/client"
	"github.com/guttosm/tickprobe/internal/domain/dto"
	"github.com/guttosm/tickprobe/internal/domain/models"
	"github.com/guttosm/tickprobe/internal/loadtest"
	"github.com/guttosm/tickprobe/internal/seed"
)

// NewClient builds the price API client from cfg.API.
func NewClient(cfg config.Config) *client.Client {
	return client.New(cfg.API.BaseURL, cfg.API.Timeout)
}

// LoadTestConfig maps the configuration onto a driver run.
func LoadTestConfig(cfg config.Config) loadtest.Config {
	lt := cfg.LoadTest
	return loadtest.Config{
		Username:          cfg.API.Username,
		Password:          cfg.API.Password,
		Symbol:            lt.Symbol,
		Iterations:        lt.Iterations,
		AnomalyIndex:      lt.AnomalyIndex,
		AnomalyMultiplier: lt.AnomalyMultiplier,
		BasePrice:         lt.BasePrice,
		MaxDrift:          lt.MaxDrift,
		MinVolume:         lt.MinVolume,
		MaxVolume:         lt.MaxVolume,
		Interval:          lt.Interval,
	}
}

// NewDriver wires a load test driver against api with a seeded source and
// the wall clock.
func NewDriver(cfg config.Config, api loadtest.API) *loadtest.Driver {
	return loadtest.NewDriver(LoadTestConfig(cfg), api, loadtest.NewRand(cfg.LoadTest.Seed), loadtest.RealClock{})
}

// NewSeeder wires the reference-data seeder against api.
func NewSeeder(cfg config.Config, api seed.API) *seed.Seeder {
	symbols := make([]models.Symbol, 0, len(cfg.Seed.Symbols))
	for _, s := range cfg.Seed.Symbols {
		symbols = append(symbols, models.Symbol{Code: s.Code, Name: s.Name, Type: s.Type})
	}
	creds := dto.Credentials{Username: cfg.Seed.Username, Password: cfg.Seed.Password}
	return seed.NewSeeder(api, creds, symbols)
}
