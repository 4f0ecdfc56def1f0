package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs, one per tool or concern: the remote API
// the tools talk to, the load test parameters, the reference-data seeder, the
// local stub server, the optional run history database, and logging.
//
// Example ENV equivalent:
//
//	API_BASE_URL=http://localhost:8080/api
//	API_USERNAME=tester
//	API_PASSWORD=password123
//	LOADTEST_SYMBOL=AAPL
//	LOADTEST_ITERATIONS=20
//	LOADTEST_ANOMALY_INDEX=15
//	REPORT_STORE=false
type Config struct {
	API      APIConfig      // Remote price API endpoint and credentials
	LoadTest LoadTestConfig // Synthetic tick generation and pacing
	Seed     SeedConfig     // Reference-data bootstrap
	Stub     StubConfig     // Local stand-in for the remote API
	Report   ReportConfig   // Report persistence and spike check
	Postgres PostgresConfig // PostgreSQL connection settings (run history)
	Log      LogConfig      // Logger level and format
}

// APIConfig points the tools at the remote price service.
type APIConfig struct {
	BaseURL  string        // Base URL including the /api prefix
	Username string        // Account used by the load test
	Password string        // Password for Username
	Timeout  time.Duration // Per-request timeout; 0 keeps the transport default
}

// LoadTestConfig defines one load/anomaly run.
//
// Fields:
//   - Symbol: ticker code targeted by the whole run.
//   - Iterations: number of ticks generated and submitted.
//   - AnomalyIndex: 1-based iteration that receives the spike (0 disables it).
//   - AnomalyMultiplier: factor applied to the running price at AnomalyIndex.
//   - BasePrice: starting value of the running price.
//   - MaxDrift: bound of the symmetric per-tick drift.
//   - MinVolume, MaxVolume: inclusive volume bounds.
//   - Interval: pause between submissions.
//   - Seed: random seed; 0 seeds from the clock.
type LoadTestConfig struct {
	Symbol            string
	Iterations        int
	AnomalyIndex      int
	AnomalyMultiplier float64
	BasePrice         float64
	MaxDrift          float64
	MinVolume         int
	MaxVolume         int
	Interval          time.Duration
	Seed              int64
}

// SymbolConfig is one symbol created by the seeder.
type SymbolConfig struct {
	Code string
	Name string
	Type string
}

// SeedConfig holds the account and symbols used by the reference-data seeder.
type SeedConfig struct {
	Username string
	Password string
	Symbols  []SymbolConfig
}

// StubConfig holds settings for the local stub API server.
type StubConfig struct {
	Port      string        // The TCP port the stub listens on (e.g., "8080")
	JWTSecret string        // HMAC secret used to sign bearer tokens
	TokenTTL  time.Duration // Lifetime of issued tokens
	RateLimit int           // Requests per minute allowed per client IP
}

// ReportConfig controls what happens with a finished run.
type ReportConfig struct {
	Store                 bool    // Persist runs to PostgreSQL
	SpikeThresholdPercent float64 // Tick-to-tick move flagged as a spike
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string
	Pretty bool
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read by cmd, which hands each
// component the explicit sub-config it needs.
var AppConfig Config

// defaultSeedSymbols is the reference data created by the seeder when
// SEED_SYMBOLS is not set.
const defaultSeedSymbols = "AAPL:Apple Inc.:STOCK,BTC:Bitcoin:CRYPTO,GOOGL:Alphabet Inc.:STOCK"

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If values are missing or out of range, validateConfig() terminates the app
//     with a descriptive log message.
func LoadConfig() {
	setDefaults()

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		API: APIConfig{
			BaseURL:  strings.TrimRight(viper.GetString("API_BASE_URL"), "/"),
			Username: viper.GetString("API_USERNAME"),
			Password: viper.GetString("API_PASSWORD"),
			Timeout:  viper.GetDuration("API_TIMEOUT"),
		},
		LoadTest: LoadTestConfig{
			Symbol:            strings.ToUpper(strings.TrimSpace(viper.GetString("LOADTEST_SYMBOL"))),
			Iterations:        viper.GetInt("LOADTEST_ITERATIONS"),
			AnomalyIndex:      viper.GetInt("LOADTEST_ANOMALY_INDEX"),
			AnomalyMultiplier: viper.GetFloat64("LOADTEST_ANOMALY_MULTIPLIER"),
			BasePrice:         viper.GetFloat64("LOADTEST_BASE_PRICE"),
			MaxDrift:          viper.GetFloat64("LOADTEST_MAX_DRIFT"),
			MinVolume:         viper.GetInt("LOADTEST_MIN_VOLUME"),
			MaxVolume:         viper.GetInt("LOADTEST_MAX_VOLUME"),
			Interval:          viper.GetDuration("LOADTEST_INTERVAL"),
			Seed:              viper.GetInt64("LOADTEST_SEED"),
		},
		Seed: SeedConfig{
			Username: viper.GetString("SEED_USERNAME"),
			Password: viper.GetString("SEED_PASSWORD"),
		},
		Stub: StubConfig{
			Port:      viper.GetString("STUB_PORT"),
			JWTSecret: viper.GetString("STUB_JWT_SECRET"),
			TokenTTL:  viper.GetDuration("STUB_TOKEN_TTL"),
			RateLimit: viper.GetInt("STUB_RATE_LIMIT"),
		},
		Report: ReportConfig{
			Store:                 viper.GetBool("REPORT_STORE"),
			SpikeThresholdPercent: viper.GetFloat64("SPIKE_THRESHOLD_PERCENT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Pretty: viper.GetBool("LOG_PRETTY"),
		},
	}

	symbols, err := ParseSymbols(viper.GetString("SEED_SYMBOLS"))
	if err != nil {
		log.Fatalf("❌ Invalid SEED_SYMBOLS: %v\n", err)
	}
	AppConfig.Seed.Symbols = symbols

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

func setDefaults() {
	viper.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	viper.SetDefault("API_USERNAME", "tester")
	viper.SetDefault("API_PASSWORD", "password123")
	viper.SetDefault("API_TIMEOUT", "0s")

	viper.SetDefault("LOADTEST_SYMBOL", "AAPL")
	viper.SetDefault("LOADTEST_ITERATIONS", 20)
	viper.SetDefault("LOADTEST_ANOMALY_INDEX", 15)
	viper.SetDefault("LOADTEST_ANOMALY_MULTIPLIER", 1.20)
	viper.SetDefault("LOADTEST_BASE_PRICE", 150.00)
	viper.SetDefault("LOADTEST_MAX_DRIFT", 0.5)
	viper.SetDefault("LOADTEST_MIN_VOLUME", 1000)
	viper.SetDefault("LOADTEST_MAX_VOLUME", 5000)
	viper.SetDefault("LOADTEST_INTERVAL", "500ms")
	viper.SetDefault("LOADTEST_SEED", 0)

	viper.SetDefault("SEED_USERNAME", "admin_nou")
	viper.SetDefault("SEED_PASSWORD", "password123")
	viper.SetDefault("SEED_SYMBOLS", defaultSeedSymbols)

	viper.SetDefault("STUB_PORT", "8080")
	viper.SetDefault("STUB_JWT_SECRET", "tickprobe-local-secret")
	viper.SetDefault("STUB_TOKEN_TTL", "24h")
	viper.SetDefault("STUB_RATE_LIMIT", 600)

	viper.SetDefault("REPORT_STORE", false)
	viper.SetDefault("SPIKE_THRESHOLD_PERCENT", 5.0)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "tickprobe")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", true)
}

// ParseSymbols parses a comma-separated list of CODE:Name:TYPE entries.
//
// Empty entries are skipped. Codes and types are upper-cased.
func ParseSymbols(raw string) ([]SymbolConfig, error) {
	var out []SymbolConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("entry %q: expected CODE:Name:TYPE", entry)
		}
		sym := SymbolConfig{
			Code: strings.ToUpper(strings.TrimSpace(parts[0])),
			Name: strings.TrimSpace(parts[1]),
			Type: strings.ToUpper(strings.TrimSpace(parts[2])),
		}
		if sym.Code == "" || sym.Name == "" || sym.Type == "" {
			return nil, fmt.Errorf("entry %q: empty field", entry)
		}
		out = append(out, sym)
	}
	return out, nil
}

// validateConfig ensures required variables are present and sane, and terminates
// the application otherwise.
func validateConfig() {
	if problems := AppConfig.Problems(); len(problems) > 0 {
		log.Fatalf("❌ Invalid configuration: %v\n", problems)
	}
}

// Problems lists the names of missing or out-of-range settings.
func (c Config) Problems() []string {
	var bad []string

	if c.API.BaseURL == "" {
		bad = append(bad, "API_BASE_URL")
	}
	if c.API.Username == "" {
		bad = append(bad, "API_USERNAME")
	}
	if c.API.Password == "" {
		bad = append(bad, "API_PASSWORD")
	}
	if c.API.Timeout < 0 {
		bad = append(bad, "API_TIMEOUT")
	}
	if c.LoadTest.Symbol == "" {
		bad = append(bad, "LOADTEST_SYMBOL")
	}
	if c.LoadTest.Iterations < 1 {
		bad = append(bad, "LOADTEST_ITERATIONS")
	}
	if c.LoadTest.AnomalyIndex < 0 {
		bad = append(bad, "LOADTEST_ANOMALY_INDEX")
	}
	if c.LoadTest.AnomalyMultiplier <= 0 {
		bad = append(bad, "LOADTEST_ANOMALY_MULTIPLIER")
	}
	if c.LoadTest.BasePrice <= 0 {
		bad = append(bad, "LOADTEST_BASE_PRICE")
	}
	if c.LoadTest.MaxDrift < 0 {
		bad = append(bad, "LOADTEST_MAX_DRIFT")
	}
	if c.LoadTest.MinVolume < 1 || c.LoadTest.MaxVolume < c.LoadTest.MinVolume {
		bad = append(bad, "LOADTEST_MIN_VOLUME/LOADTEST_MAX_VOLUME")
	}
	if c.LoadTest.Interval < 0 {
		bad = append(bad, "LOADTEST_INTERVAL")
	}
	if c.Stub.Port == "" {
		bad = append(bad, "STUB_PORT")
	}
	if c.Stub.JWTSecret == "" {
		bad = append(bad, "STUB_JWT_SECRET")
	}
	if c.Report.Store {
		if c.Postgres.Host == "" {
			bad = append(bad, "POSTGRES_HOST")
		}
		if c.Postgres.Port == 0 {
			bad = append(bad, "POSTGRES_PORT")
		}
		if c.Postgres.DBName == "" {
			bad = append(bad, "POSTGRES_DB")
		}
	}

	return bad
}
