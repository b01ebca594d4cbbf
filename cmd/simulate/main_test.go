package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-markov/internal/config"
	"league-markov/internal/orchestrator"
	"league-markov/internal/storage"
	"league-markov/internal/storage/memory"
)

func TestRun_FixturesCSV(t *testing.T) {
	var out bytes.Buffer
	code, err := run(context.Background(), []string{"--use-fixtures", "--seed", "42", "--format", "csv"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Liverpool")
}

func TestRun_FixtureChecksFail(t *testing.T) {
	var out bytes.Buffer
	code, err := run(context.Background(), []string{"--use-fixtures", "--check"}, &out)
	require.NoError(t, err)
	assert.Equal(t, exitChecksFailed, code)
	assert.Contains(t, out.String(), "[FAIL]")
}

func TestRun_ClosesStoreOnFailure(t *testing.T) {
	closed := false
	orig := openStore
	openStore = func(context.Context, *config.Config, bool) (storage.MatchStore, func(), error) {
		return memory.NewMatchStore(), func() { closed = true }, nil
	}
	t.Cleanup(func() { openStore = orig })

	_, err := run(context.Background(), []string{"--season", "2024-2025", "--no-scrape"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, orchestrator.ErrNoData)
	assert.True(t, closed, "store cleanup must run before run returns")
}

func TestRun_RequiresSeason(t *testing.T) {
	t.Setenv("LEAGUE_SEASON", "")
	_, err := run(context.Background(), []string{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "--season is required")
}

func TestRun_UnknownFormat(t *testing.T) {
	_, err := run(context.Background(), []string{"--use-fixtures", "--format", "xml"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown format")
}
