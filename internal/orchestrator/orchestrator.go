// Package orchestrator runs the standings pipeline for one season.
// It coordinates: load or scrape → sufficiency check → simulation → reporting
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"league-markov/internal/domain"
	"league-markov/internal/logging"
	"league-markov/internal/markov"
	"league-markov/internal/observability"
	"league-markov/internal/pipeline"
	"league-markov/internal/reporting"
	"league-markov/internal/simulation"
	"league-markov/internal/storage"
)

// ErrNoData is returned when a season has no matches and none could be scraped.
var ErrNoData = errors.New("no match data for season")

// MatchScraper fetches every team's match log for a season.
type MatchScraper interface {
	ScrapeAll(ctx context.Context, season string) ([]*domain.RawMatch, error)
}

// Orchestrator coordinates the standings pipeline.
// Flow: load or scrape → sufficiency check → simulation → report
type Orchestrator struct {
	// Stores
	matchStore storage.MatchStore

	// Collaborators
	scraper   MatchScraper // nil disables scraping
	generator *reporting.Generator

	// Simulation settings
	seed     uint64
	fallback simulation.FallbackPolicy

	minPlayedPerVenue int
	logger            logrus.FieldLogger

	// seasonLoads collapses concurrent scrape-and-store work per season.
	seasonLoads singleflight.Group
}

// Options for creating Orchestrator.
type Options struct {
	// Required store
	MatchStore storage.MatchStore

	// Optional scraper for seasons missing from the store
	Scraper MatchScraper

	Seed     uint64
	Fallback simulation.FallbackPolicy

	// Options
	MinPlayedPerVenue int              // sufficiency threshold, 0 = default
	Clock             func() time.Time // report timestamps, nil = wall clock
	RunID             func() string    // report IDs, nil = random UUID
	Logger            logrus.FieldLogger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	gen := reporting.NewGenerator()
	if opts.Clock != nil {
		gen = gen.WithClock(opts.Clock)
	}
	if opts.RunID != nil {
		gen = gen.WithRunID(opts.RunID)
	}

	o := &Orchestrator{
		matchStore:        opts.MatchStore,
		scraper:           opts.Scraper,
		generator:         gen,
		seed:              opts.Seed,
		fallback:          opts.Fallback,
		minPlayedPerVenue: opts.MinPlayedPerVenue,
		logger:            opts.Logger,
	}
	if o.fallback == "" {
		o.fallback = simulation.FallbackUniform
	}
	if o.minPlayedPerVenue <= 0 {
		o.minPlayedPerVenue = pipeline.DefaultMinPlayedPerVenue
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	return o
}

// Standings executes the full pipeline for season and returns the report.
// Phases:
//  1. Validate the season label
//  2. Load the season from the store, scraping and storing it when absent
//  3. Run sufficiency checks (findings are reported, never fatal)
//  4. Prepare and simulate the remaining fixtures
//  5. Build the report
func (o *Orchestrator) Standings(ctx context.Context, season string, remainingHome, remainingAway int) (*reporting.Report, error) {
	// Phase 1: Validate season
	season, err := ParseSeason(season)
	if err != nil {
		return nil, err
	}
	if remainingHome < 0 || remainingAway < 0 {
		return nil, fmt.Errorf("%w: remaining matches must be non-negative", storage.ErrInvalidInput)
	}
	log := o.logger.WithField("season", season)

	// Phase 2: Load or scrape
	log.WithField("phase", "load").Info("Loading season")
	if err := o.runPhase("load", func() error { return o.ensureSeason(ctx, season) }); err != nil {
		return nil, fmt.Errorf("phase 2 (load season) failed: %w", err)
	}

	// Phase 3: Sufficiency
	var quality *reporting.DataQualitySection
	err = o.runPhase("sufficiency", func() error {
		checker := pipeline.NewSufficiencyChecker(o.matchStore).WithMinPlayedPerVenue(o.minPlayedPerVenue)
		result, err := checker.Check(ctx, season)
		if err != nil {
			return err
		}
		quality = convertToDataQuality(result)
		for _, finding := range result.Errors {
			log.WithField("phase", "sufficiency").Warn(finding)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("phase 3 (sufficiency) failed: %w", err)
	}

	// Phase 4: Simulation
	log.WithField("phase", "simulate").Info("Simulating remaining fixtures")
	var (
		run           *simulation.RunResult
		fallbackDraws int
	)
	err = o.runPhase("simulate", func() error {
		sim := simulation.New(simulation.Options{
			Seed:       o.seed,
			Fallback:   o.fallback,
			Logger:     log,
			OnFallback: func(simulation.FallbackEvent) { fallbackDraws++ },
		})
		runner := simulation.NewRunner(simulation.RunnerOptions{MatchStore: o.matchStore, Simulator: sim})

		var err error
		run, err = runner.Run(ctx, season, remainingHome, remainingAway)
		return err
	})
	if err != nil {
		if errors.Is(err, simulation.ErrNoMatches) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, season)
		}
		return nil, fmt.Errorf("phase 4 (simulation) failed: %w", err)
	}

	// Phase 5: Report
	report := o.generator.Generate(reporting.Input{
		Season:        season,
		Seed:          o.seed,
		Fallback:      string(o.fallback),
		RemainingHome: remainingHome,
		RemainingAway: remainingAway,
		FallbackDraws: fallbackDraws,
		Records:       run.Records,
		Standings:     run.Standings,
		DataQuality:   quality,
	})

	log.WithFields(logrus.Fields{
		"run_id":         report.RunID,
		"teams":          len(report.Standings),
		"fallback_draws": fallbackDraws,
	}).Info("Pipeline completed")
	return report, nil
}

// Seasons lists the stored seasons.
func (o *Orchestrator) Seasons(ctx context.Context) ([]string, error) {
	return o.matchStore.ListSeasons(ctx)
}

// Sufficiency runs the data sufficiency checks for a stored season.
func (o *Orchestrator) Sufficiency(ctx context.Context, season string) (*pipeline.SufficiencyResult, error) {
	season, err := ParseSeason(season)
	if err != nil {
		return nil, err
	}
	return pipeline.NewSufficiencyChecker(o.matchStore).WithMinPlayedPerVenue(o.minPlayedPerVenue).Check(ctx, season)
}

// TeamMatrices returns the home and away transition matrices of team in a stored season.
func (o *Orchestrator) TeamMatrices(ctx context.Context, season, team string) (home, away *markov.TransitionMatrix, err error) {
	season, err = ParseSeason(season)
	if err != nil {
		return nil, nil, err
	}
	runner := simulation.NewRunner(simulation.RunnerOptions{MatchStore: o.matchStore})
	home, away, err = runner.TeamMatrices(ctx, season, team)
	if errors.Is(err, simulation.ErrNoMatches) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoData, season)
	}
	return home, away, err
}

// Refresh scrapes a season again and replaces the stored rows. On failure the
// stored season is left as it was.
func (o *Orchestrator) Refresh(ctx context.Context, season string) (int, error) {
	season, err := ParseSeason(season)
	if err != nil {
		return 0, err
	}
	if o.scraper == nil {
		return 0, fmt.Errorf("%w: scraping disabled", ErrNoData)
	}

	v, err, _ := o.seasonLoads.Do("refresh:"+season, func() (any, error) {
		matches, err := o.scrape(ctx, season)
		if err != nil {
			return 0, err
		}
		if err := o.matchStore.ReplaceSeason(ctx, season, matches); err != nil {
			return 0, fmt.Errorf("store season %s: %w", season, err)
		}
		return len(matches), nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// ensureSeason makes sure season is in the store (cache-or-scrape).
// Concurrent callers for one season share a single scrape.
func (o *Orchestrator) ensureSeason(ctx context.Context, season string) error {
	exists, err := o.matchStore.SeasonExists(ctx, season)
	if err != nil {
		return err
	}
	if exists {
		o.logger.WithField("season", season).Info("Season found in store")
		return nil
	}
	if o.scraper == nil {
		return fmt.Errorf("%w: %s", ErrNoData, season)
	}

	_, err, shared := o.seasonLoads.Do("load:"+season, func() (any, error) {
		return nil, o.scrapeAndStore(ctx, season)
	})
	if shared {
		o.logger.WithField("season", season).Debug("Joined in-flight season load")
	}
	return err
}

func (o *Orchestrator) scrapeAndStore(ctx context.Context, season string) error {
	// A load that finished just before this one started already stored the season.
	exists, err := o.matchStore.SeasonExists(ctx, season)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	matches, err := o.scrape(ctx, season)
	if err != nil {
		return err
	}
	if err := o.matchStore.InsertBulk(ctx, matches); err != nil {
		// Another process sharing the store may have won the race.
		if errors.Is(err, storage.ErrDuplicateKey) {
			if exists, existsErr := o.matchStore.SeasonExists(ctx, season); existsErr == nil && exists {
				o.logger.WithField("season", season).Info("Season stored concurrently")
				return nil
			}
		}
		return fmt.Errorf("store season %s: %w", season, err)
	}
	o.logger.WithFields(logrus.Fields{"season": season, "matches": len(matches)}).Info("Season scraped and stored")
	return nil
}

func (o *Orchestrator) scrape(ctx context.Context, season string) ([]*domain.RawMatch, error) {
	o.logger.WithField("season", season).Info("Scraping season")
	matches, err := o.scraper.ScrapeAll(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("scrape season %s: %w", season, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s (scrape returned no rows)", ErrNoData, season)
	}
	return matches, nil
}

func (o *Orchestrator) runPhase(phase string, fn func() error) error {
	start := time.Now()
	err := fn()
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.RecordPipelineRun(phase, status, time.Since(start).Seconds())
	return err
}

// convertToDataQuality converts sufficiency results to the report section.
func convertToDataQuality(result *pipeline.SufficiencyResult) *reporting.DataQualitySection {
	section := &reporting.DataQualitySection{
		AllChecksPassed: result.AllPass,
		IntegrityErrors: result.Errors,
	}
	for _, c := range result.Checks {
		section.SufficiencyChecks = append(section.SufficiencyChecks, reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		})
	}
	return section
}
