// Package main projects final league standings from a match-log CSV or a stored season.
//
// Modes:
//   - --input file.csv: prepare and simulate the file directly, no store
//   - --use-fixtures: simulate the built-in demo season from memory
//   - otherwise: load the season from the configured store, scraping it when absent
//
// --check and --verify print sufficiency or replay results instead of the table.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"league-markov/internal/config"
	"league-markov/internal/logging"
	"league-markov/internal/orchestrator"
	"league-markov/internal/pipeline"
	"league-markov/internal/prepare"
	"league-markov/internal/reporting"
	"league-markov/internal/scraper"
	"league-markov/internal/simulation"
	"league-markov/internal/storage"
	"league-markov/internal/storage/factory"
	"league-markov/internal/storage/memory"
	"league-markov/internal/verification"
)

// exitChecksFailed is the exit code when --check or --verify finds a problem.
const exitChecksFailed = 2

// openStore is swapped in tests.
var openStore = openMatchStore

func main() {
	config.LoadEnvFile(".env")

	code, err := run(context.Background(), os.Args[1:], os.Stdout)
	if err != nil {
		logrus.Fatal(err)
	}
	os.Exit(code)
}

// run executes one simulate invocation and returns the process exit code.
// Every deferred cleanup has run by the time it returns.
func run(ctx context.Context, args []string, stdout io.Writer) (int, error) {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("LEAGUE_CONFIG"), "Path to YAML config file")
	input := fs.String("input", "", "Match-log CSV to simulate directly")
	useFixtures := fs.Bool("use-fixtures", false, "Simulate the built-in fixture season")
	season := fs.String("season", "", "Season YYYY-YYYY (overrides config)")
	remainingHome := fs.Int("remaining-home", -1, "Remaining home matches per team (overrides config)")
	remainingAway := fs.Int("remaining-away", -1, "Remaining away matches per team (overrides config)")
	seed := fs.Uint64("seed", 0, "Random seed (overrides config when non-zero)")
	fallback := fs.String("fallback", "", "Fallback policy: uniform or strict (overrides config)")
	format := fs.String("format", "md", "Output format: md, csv, json")
	output := fs.String("output", "", "Write output to file instead of stdout")
	check := fs.Bool("check", false, "Print data sufficiency checks and exit (store mode)")
	verify := fs.Bool("verify", false, "Replay the projection with the same seed and exit (store mode)")
	noScrape := fs.Bool("no-scrape", false, "Do not scrape seasons missing from the store")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}
	if *season != "" {
		cfg.Season = *season
	}
	if *remainingHome >= 0 {
		cfg.RemainingHome = *remainingHome
	}
	if *remainingAway >= 0 {
		cfg.RemainingAway = *remainingAway
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *fallback != "" {
		cfg.Fallback = *fallback
	}
	if *useFixtures {
		cfg.Storage.Driver = config.DriverMemory
		if cfg.Season == "" {
			cfg.Season = pipeline.FixtureSeason
		}
	}
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid config: %w", err)
	}

	// Logs go to stderr so stdout carries only the rendered table.
	logger, err := logging.NewWithOutput(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return 0, fmt.Errorf("set up logging: %w", err)
	}

	policy, err := simulation.ParseFallbackPolicy(cfg.Fallback)
	if err != nil {
		return 0, fmt.Errorf("invalid fallback: %w", err)
	}

	var out []byte
	switch {
	case *input != "":
		report, err := simulateFile(*input, cfg, policy, logger)
		if err != nil {
			return 0, fmt.Errorf("simulation failed: %w", err)
		}
		if out, err = render(report, *format); err != nil {
			return 0, err
		}

	default:
		if cfg.Season == "" {
			return 0, errors.New("--season is required unless --input or --use-fixtures is given")
		}

		store, cleanup, err := openStore(ctx, cfg, *useFixtures)
		if err != nil {
			return 0, fmt.Errorf("setup failed: %w", err)
		}
		defer cleanup()
		orch := buildOrchestrator(store, cfg, policy, *useFixtures || *noScrape, logger)

		if *check {
			result, err := orch.Sufficiency(ctx, cfg.Season)
			if err != nil {
				return 0, fmt.Errorf("sufficiency check failed: %w", err)
			}
			printChecks(stdout, result)
			if !result.AllPass {
				return exitChecksFailed, nil
			}
			return 0, nil
		}

		report, err := orch.Standings(ctx, cfg.Season, cfg.RemainingHome, cfg.RemainingAway)
		if err != nil {
			return 0, fmt.Errorf("simulation failed: %w", err)
		}

		if *verify {
			verifier := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
				MatchStore: store,
				Seed:       cfg.Seed,
				Fallback:   policy,
				Logger:     logger.WithField("component", "verification"),
			})
			result, err := verifier.VerifySeason(ctx, report.Season, cfg.RemainingHome, cfg.RemainingAway)
			if err != nil {
				return 0, fmt.Errorf("verification failed: %w", err)
			}
			fmt.Fprintf(stdout, "Replay verification for %s: %d/%d teams matched\n", result.Season, result.MatchedTeams, result.TotalTeams)
			for _, d := range result.Divergences {
				fmt.Fprintf(stdout, "  - %s\n", d)
			}
			if !result.OK() {
				return exitChecksFailed, nil
			}
			return 0, nil
		}
		if out, err = render(report, *format); err != nil {
			return 0, err
		}
	}

	if *output == "" {
		_, err := stdout.Write(out)
		return 0, err
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", *output, err)
	}
	logger.WithField("path", *output).Info("Standings written")
	return 0, nil
}

// simulateFile runs the engine over a CSV without touching a store.
func simulateFile(path string, cfg *config.Config, policy simulation.FallbackPolicy, logger *logrus.Logger) (*reporting.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := prepare.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	records, err := prepare.Prepare(table)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", path, err)
	}

	var fallbackDraws int
	sim := simulation.New(simulation.Options{
		Seed:       cfg.Seed,
		Fallback:   policy,
		Logger:     logger.WithField("component", "simulator"),
		OnFallback: func(simulation.FallbackEvent) { fallbackDraws++ },
	})
	standings, err := sim.CalculateFinalPoints(records, cfg.RemainingHome, cfg.RemainingAway)
	if err != nil {
		return nil, err
	}

	return reporting.NewGenerator().Generate(reporting.Input{
		Season:        cfg.Season,
		Seed:          cfg.Seed,
		Fallback:      string(policy),
		RemainingHome: cfg.RemainingHome,
		RemainingAway: cfg.RemainingAway,
		FallbackDraws: fallbackDraws,
		Records:       records,
		Standings:     standings,
	}), nil
}

func openMatchStore(ctx context.Context, cfg *config.Config, fixtures bool) (storage.MatchStore, func(), error) {
	if !fixtures {
		return factory.Open(ctx, cfg.Storage)
	}
	mem := memory.NewMatchStore()
	if err := pipeline.LoadFixtures(ctx, mem); err != nil {
		return nil, nil, err
	}
	return mem, func() {}, nil
}

func buildOrchestrator(store storage.MatchStore, cfg *config.Config, policy simulation.FallbackPolicy, noScrape bool, logger *logrus.Logger) *orchestrator.Orchestrator {
	opts := orchestrator.Options{
		MatchStore: store,
		Seed:       cfg.Seed,
		Fallback:   policy,
		Logger:     logger.WithField("component", "orchestrator"),
	}
	if !noScrape {
		opts.Scraper = scraper.New(scraper.Options{
			BaseURL: cfg.Scraper.BaseURL,
			League:  cfg.Scraper.League,
			Teams:   cfg.Scraper.Teams,
			Delay:   cfg.Scraper.Delay,
			Logger:  logger.WithField("component", "scraper"),
		})
	}
	return orchestrator.New(opts)
}

func render(report *reporting.Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "md", "markdown":
		return []byte(reporting.RenderMarkdown(report)), nil
	case "csv":
		return []byte(reporting.RenderCSV(report.Standings)), nil
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown format %q (use md, csv or json)", format)
	}
}

func printChecks(w io.Writer, result *pipeline.SufficiencyResult) {
	fmt.Fprintf(w, "Sufficiency checks for %s\n", result.Season)
	for _, c := range result.Checks {
		status := "PASS"
		if !c.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %s: %s (threshold %s)\n", status, c.Name, c.Actual, c.Threshold)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "    - %s\n", e)
	}
}
