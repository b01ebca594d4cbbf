// Package scraper fetches per-team match logs from fbref.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"league-markov/internal/domain"
	"league-markov/internal/logging"
	"league-markov/internal/observability"
)

// DefaultDelay is the pause between two team requests.
const DefaultDelay = 5 * time.Second

// Options configures a Scraper. Zero values take the package defaults.
type Options struct {
	BaseURL string
	League  string
	Teams   map[string]string // display name -> fbref squad code
	Delay   time.Duration
	Client  *http.Client
	Logger  logrus.FieldLogger
}

// Scraper downloads and parses squad match logs for one league.
type Scraper struct {
	baseURL string
	league  string
	teams   map[string]string
	delay   time.Duration
	client  *http.Client
	logger  logrus.FieldLogger

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Scraper.
func New(opts Options) *Scraper {
	s := &Scraper{
		baseURL: opts.BaseURL,
		league:  opts.League,
		teams:   opts.Teams,
		delay:   opts.Delay,
		client:  opts.Client,
		logger:  opts.Logger,
		sleep:   sleepContext,
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.league == "" {
		s.league = DefaultLeague
	}
	if len(s.teams) == 0 {
		s.teams = DefaultTeams()
	}
	if s.delay < 0 {
		s.delay = 0
	}
	if s.client == nil {
		s.client = NewHTTPClient()
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// Teams returns the configured team names in scrape order.
func (s *Scraper) Teams() []string {
	return sortedTeams(s.teams)
}

// ScrapeTeam fetches and parses one squad's match log for season.
func (s *Scraper) ScrapeTeam(ctx context.Context, season, team string) ([]*domain.RawMatch, error) {
	code, ok := s.teams[team]
	if !ok {
		return nil, fmt.Errorf("unknown team %q", team)
	}

	start := time.Now()
	url := TeamURL(s.baseURL, s.league, team, code, season)
	body, err := s.fetch(ctx, url)
	if err != nil {
		observability.RecordScrape("error", time.Since(start).Seconds(), 0)
		return nil, err
	}

	matches, err := ParseMatchLog(bytes.NewReader(body), season, team)
	if err != nil {
		observability.RecordScrape("error", time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("%s: %w", team, err)
	}

	observability.RecordScrape("success", time.Since(start).Seconds(), len(matches))
	return matches, nil
}

// ScrapeAll scrapes every configured team in name order, pausing between
// requests. A team that fails is logged and skipped. Seq follows the order
// rows are returned. Only context cancellation aborts the walk.
func (s *Scraper) ScrapeAll(ctx context.Context, season string) ([]*domain.RawMatch, error) {
	var all []*domain.RawMatch
	seen := make(map[string]bool)

	for i, team := range s.Teams() {
		if i > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				return nil, err
			}
		}

		log := s.logger.WithFields(logrus.Fields{"season": season, "team": team})
		matches, err := s.ScrapeTeam(ctx, season, team)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).Warn("scrape failed, skipping team")
			continue
		}

		for _, m := range matches {
			if seen[m.MatchID] {
				log.WithField("date", m.Date).Warn("duplicate match row dropped")
				continue
			}
			seen[m.MatchID] = true
			m.Seq = len(all)
			all = append(all, m)
		}
		log.WithField("matches", len(matches)).Info("team scraped")
	}

	return all, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
