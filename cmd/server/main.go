// Package main runs the standings HTTP API:
// - JSON, CSV and Markdown standings per season
// - websocket standings stream
// - sufficiency checks, transition matrices, season refresh
// - Prometheus metrics on /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"league-markov/internal/api"
	"league-markov/internal/config"
	"league-markov/internal/logging"
	"league-markov/internal/orchestrator"
	"league-markov/internal/pipeline"
	"league-markov/internal/scraper"
	"league-markov/internal/simulation"
	"league-markov/internal/storage"
	"league-markov/internal/storage/factory"
)

const shutdownTimeout = 15 * time.Second

func main() {
	config.LoadEnvFile(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		logrus.Fatal(err)
	}
}

// run serves the API until ctx is cancelled or the listener fails.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("LEAGUE_CONFIG"), "Path to YAML config file")
	addr := fs.String("addr", "", "HTTP listen address (overrides config)")
	driver := fs.String("storage", "", "Storage driver: memory, sqlite, postgres, clickhouse (overrides config)")
	dsn := fs.String("dsn", "", "Storage DSN or SQLite path (overrides config)")
	useFixtures := fs.Bool("use-fixtures", false, "Load the built-in fixture season into the store")
	noScrape := fs.Bool("no-scrape", false, "Serve stored seasons only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *dsn != "" {
		cfg.Storage.DSN = *dsn
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	log := logger.WithField("component", "server")

	fallback, err := simulation.ParseFallbackPolicy(cfg.Fallback)
	if err != nil {
		return fmt.Errorf("invalid fallback: %w", err)
	}

	store, cleanup, err := factory.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	defer cleanup()
	log.WithField("driver", cfg.Storage.Driver).Info("Store ready")

	if *useFixtures {
		if err := pipeline.LoadFixtures(ctx, store); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return err
		}
		log.WithField("season", pipeline.FixtureSeason).Info("Fixture season loaded")
	}

	opts := orchestrator.Options{
		MatchStore: store,
		Seed:       cfg.Seed,
		Fallback:   fallback,
		Logger:     logger.WithField("component", "orchestrator"),
	}
	if !*noScrape {
		opts.Scraper = scraper.New(scraper.Options{
			BaseURL: cfg.Scraper.BaseURL,
			League:  cfg.Scraper.League,
			Teams:   cfg.Scraper.Teams,
			Delay:   cfg.Scraper.Delay,
			Logger:  logger.WithField("component", "scraper"),
		})
	}

	handler := api.NewHandler(api.Options{
		Service:       orchestrator.New(opts),
		RemainingHome: cfg.RemainingHome,
		RemainingAway: cfg.RemainingAway,
		Logger:        logger.WithField("component", "api"),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal, draining connections")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Shutdown complete")
	return nil
}
