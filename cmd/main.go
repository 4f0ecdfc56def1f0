package main

//
//  @title           tickprobe stub API
//  @version         1.0
//  @description     In-process stand-in for the price-tracking API exercised by the load and seed tools.
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/tickprobe
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @securityDefinitions.apikey  BearerAuth
//  @in                          header
//  @name                        Authorization
//
//  @tag.name        auth
//  @tag.description Registration and login
//
//  @tag.name        symbols
//  @tag.description Reference symbols
//
//  @tag.name        prices
//  @tag.description Price observations per symbol
//
//  @tag.name        health
//  @tag.description Liveness and readiness checks

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tickprobe/config"
	_ "github.com/guttosm/tickprobe/docs" // swagger docs
	"github.com/guttosm/tickprobe/internal/app"
	"github.com/guttosm/tickprobe/internal/domain/models"
	"github.com/guttosm/tickprobe/internal/logger"
	"github.com/guttosm/tickprobe/internal/report"
	"github.com/guttosm/tickprobe/internal/seed"
)

// options are the CLI flags that are not configuration overrides.
type options struct {
	mode   string
	format string
}

// parseFlags parses args and applies flag overrides onto cfg. The result is
// validated again, so an override cannot produce a config LoadConfig would reject.
//
// Flags:
//   - --mode: "load", "seed", "stub" or "demo". Default: "load".
//   - --format: report format for load runs, "text" or "json". Default: "text".
//   - --iterations: ticks per run. Defaults to LOADTEST_ITERATIONS.
//   - --symbol: symbol the run posts prices for, upper-cased. Defaults to LOADTEST_SYMBOL.
//   - --port: stub server port. Defaults to STUB_PORT.
func parseFlags(args []string, cfg *config.Config) (options, error) {
	fs := flag.NewFlagSet("tickprobe", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.mode, "mode", "load", "Mode: load, seed, stub or demo")
	fs.StringVar(&opts.format, "format", "text", "Report format: text or json")
	iterations := fs.Int("iterations", cfg.LoadTest.Iterations, "Number of ticks to submit")
	symbol := fs.String("symbol", cfg.LoadTest.Symbol, "Symbol to post prices for")
	port := fs.String("port", cfg.Stub.Port, "Port for stub and demo modes")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch opts.mode {
	case "load", "seed", "stub", "demo":
	default:
		return options{}, fmt.Errorf("unknown mode %q", opts.mode)
	}
	if opts.format != "text" && opts.format != "json" {
		return options{}, fmt.Errorf("unknown format %q", opts.format)
	}
	if *iterations < 1 {
		return options{}, fmt.Errorf("iterations must be at least 1, got %d", *iterations)
	}

	cfg.LoadTest.Iterations = *iterations
	cfg.LoadTest.Symbol = strings.ToUpper(strings.TrimSpace(*symbol))
	cfg.Stub.Port = *port
	if problems := cfg.Problems(); len(problems) > 0 {
		return options{}, fmt.Errorf("invalid settings after flags: %s", strings.Join(problems, ", "))
	}
	return opts, nil
}

// runLoad executes one load/anomaly run against cfg.API and renders the
// report to w. When cfg.Report.Store is set the run is also persisted.
//
// A login failure returns an error and nothing is rendered.
func runLoad(ctx context.Context, cfg config.Config, w io.Writer, format string) (*models.Report, error) {
	if cfg.LoadTest.AnomalyIndex > cfg.LoadTest.Iterations {
		logger.L().Warn().
			Int("anomaly_index", cfg.LoadTest.AnomalyIndex).
			Int("iterations", cfg.LoadTest.Iterations).
			Msg("anomaly index beyond last iteration; no spike will be injected")
	}

	rep, err := app.NewDriver(cfg, app.NewClient(cfg)).Execute(ctx)
	if err != nil {
		return nil, err
	}

	spikes := report.DetectSpikes(rep.Ticks(), cfg.Report.SpikeThresholdPercent)
	if format == "json" {
		err = report.WriteJSON(w, rep, spikes)
	} else {
		err = report.WriteText(w, rep, spikes, cfg.Report.SpikeThresholdPercent)
	}
	if err != nil {
		return rep, fmt.Errorf("write report: %w", err)
	}

	if cfg.Report.Store {
		repo, cleanup, err := app.InitHistory(cfg)
		if err != nil {
			return rep, err
		}
		defer cleanup()
		if err := repo.SaveReport(ctx, rep); err != nil {
			return rep, fmt.Errorf("save run: %w", err)
		}
		logger.L().Info().Str("run_id", rep.RunID).Msg("run stored")
	}
	return rep, nil
}

// runSeed creates the configured reference symbols and renders one line per symbol.
func runSeed(ctx context.Context, cfg config.Config, w io.Writer) ([]seed.SymbolResult, error) {
	results, err := app.NewSeeder(cfg, app.NewClient(cfg)).Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := report.WriteSeedText(w, results); err != nil {
		return results, fmt.Errorf("write seed report: %w", err)
	}
	return results, nil
}

// runDemo starts the stub API on cfg.Stub.Port, seeds it, runs the load test
// against it and shuts the stub down again.
func runDemo(ctx context.Context, cfg config.Config, w io.Writer, format string) error {
	router, cleanup, err := app.InitializeStub(cfg)
	if err != nil {
		return fmt.Errorf("stub init: %w", err)
	}
	defer cleanup()

	ln, err := net.Listen("tcp", ":"+cfg.Stub.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	server := newServer(router, cfg.Stub.Port)
	cfg.API.BaseURL = fmt.Sprintf("http://127.0.0.1:%d/api", ln.Addr().(*net.TCPAddr).Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		cfg.Seed.Symbols = ensureSymbol(cfg.Seed.Symbols, cfg.LoadTest.Symbol)
		// The seeder logs each result, so json mode keeps w for the report alone.
		seedOut := w
		if format == "json" {
			seedOut = io.Discard
		}
		if _, err := runSeed(gctx, cfg, seedOut); err != nil {
			return err
		}
		_, err := runLoad(gctx, cfg, w, format)
		return err
	})
	return g.Wait()
}

// ensureSymbol appends code to symbols when it is missing so that demo runs
// for a custom --symbol are accepted by the stub.
func ensureSymbol(symbols []config.SymbolConfig, code string) []config.SymbolConfig {
	for _, s := range symbols {
		if s.Code == code {
			return symbols
		}
	}
	return append(symbols, config.SymbolConfig{Code: code, Name: code, Type: "STOCK"})
}

func newServer(router http.Handler, port string) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := newServer(router, port)

	go func() {
		logger.L().Info().Str("port", port).Msg("stub server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("stub server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down stub server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("stub server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("stub server exited gracefully")
}

// main is the entry point of tickprobe.
//
// Modes (selected via --mode flag):
//   - load: register, log in and submit the tick series with one spike.
//   - seed: log in and create the reference symbols.
//   - stub: serve the local stub price API until SIGINT/SIGTERM.
//   - demo: run stub, seed and load in one process.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	opts, err := parseFlags(os.Args[1:], &cfg)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logger.L().Fatal().Err(err).Msg("invalid flags")
	}

	switch opts.mode {
	case "load":
		if _, err := runLoad(ctx, cfg, os.Stdout, opts.format); err != nil {
			logger.L().Fatal().Err(err).Msg("load test failed")
		}

	case "seed":
		if _, err := runSeed(ctx, cfg, os.Stdout); err != nil {
			logger.L().Fatal().Err(err).Msg("seeding failed")
		}

	case "stub":
		router, cleanup, err := app.InitializeStub(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("stub init error")
		}
		server := startServer(router, cfg.Stub.Port)
		gracefulShutdown(ctx, server, cleanup)

	case "demo":
		if err := runDemo(ctx, cfg, os.Stdout, opts.format); err != nil {
			logger.L().Fatal().Err(err).Msg("demo failed")
		}
	}
}
