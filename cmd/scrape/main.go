// Package main scrapes one season of fbref match logs into the configured
// store or a CSV file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"league-markov/internal/config"
	"league-markov/internal/domain"
	"league-markov/internal/logging"
	"league-markov/internal/orchestrator"
	"league-markov/internal/prepare"
	"league-markov/internal/scraper"
	"league-markov/internal/storage"
	"league-markov/internal/storage/factory"
)

func main() {
	config.LoadEnvFile(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		logrus.Fatal(err)
	}
}

// run scrapes one season. Deferred cleanup has run by the time it returns.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("LEAGUE_CONFIG"), "Path to YAML config file")
	season := fs.String("season", "", "Season YYYY-YYYY (overrides config)")
	output := fs.String("output", "", "Write a CSV file instead of storing")
	teams := fs.String("teams", "", "Comma-separated subset of configured team names")
	replace := fs.Bool("replace", false, "Replace the season if it is already stored")
	delay := fs.Duration("delay", -1, "Delay between team requests (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *season != "" {
		cfg.Season = *season
	}
	if *delay >= 0 {
		cfg.Scraper.Delay = *delay
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	log := logger.WithField("component", "scrape")

	seasonName, err := orchestrator.ParseSeason(cfg.Season)
	if err != nil {
		return err
	}

	teamCodes := cfg.Scraper.Teams
	if *teams != "" {
		teamCodes, err = selectTeams(teamCodes, *teams)
		if err != nil {
			return err
		}
	}

	s := scraper.New(scraper.Options{
		BaseURL: cfg.Scraper.BaseURL,
		League:  cfg.Scraper.League,
		Teams:   teamCodes,
		Delay:   cfg.Scraper.Delay,
		Logger:  logger.WithField("component", "scraper"),
	})

	matches, err := s.ScrapeAll(ctx, seasonName)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no match rows scraped for %s", seasonName)
	}
	log.WithFields(logrus.Fields{"season": seasonName, "matches": len(matches)}).Info("Scrape complete")

	if *output != "" {
		return writeCSV(*output, matches, log)
	}

	store, cleanup, err := factory.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	defer cleanup()

	if *replace {
		err = store.ReplaceSeason(ctx, seasonName, matches)
	} else {
		err = store.InsertBulk(ctx, matches)
	}
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) && !*replace {
			return fmt.Errorf("season %s is already stored (use --replace)", seasonName)
		}
		return fmt.Errorf("store matches: %w", err)
	}
	log.WithFields(logrus.Fields{"season": seasonName, "driver": cfg.Storage.Driver}).Info("Season stored")
	return nil
}

func writeCSV(path string, matches []*domain.RawMatch, log logrus.FieldLogger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := prepare.TableFromMatches(matches).WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	log.WithField("path", path).Info("CSV written")
	return nil
}

// selectTeams restricts the team map to names, falling back to the default
// fbref map when the config has none.
func selectTeams(all map[string]string, names string) (map[string]string, error) {
	if len(all) == 0 {
		all = scraper.DefaultTeams()
	}
	out := make(map[string]string)
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		code, ok := all[name]
		if !ok {
			return nil, fmt.Errorf("unknown team %q", name)
		}
		out[name] = code
	}
	return out, nil
}
