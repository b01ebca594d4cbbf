package orchestrator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidSeason is returned for season labels that are not two consecutive years.
var ErrInvalidSeason = errors.New("invalid season: use YYYY-YYYY with consecutive years")

var (
	seasonPattern      = regexp.MustCompile(`^\d{4}-\d{4}$`)
	shortSeasonPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// ValidateSeason checks that season is YYYY-YYYY with the second year following the first.
func ValidateSeason(season string) error {
	if !seasonPattern.MatchString(season) {
		return fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}
	start, _ := strconv.Atoi(season[:4])
	end, _ := strconv.Atoi(season[5:])
	if end != start+1 {
		return fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}
	return nil
}

// ParseSeason normalizes the common spellings 2023-2024, 2023/2024, 2023-24
// and 2023/24 to 2023-2024 and validates the result.
func ParseSeason(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")

	if shortSeasonPattern.MatchString(s) {
		// Short form: the second year is the first plus one, so 1999-00 is 1999-2000.
		start, _ := strconv.Atoi(s[:4])
		if fmt.Sprintf("%02d", (start+1)%100) != s[5:] {
			return "", fmt.Errorf("%w: %q", ErrInvalidSeason, s)
		}
		s = fmt.Sprintf("%04d-%04d", start, start+1)
	}

	if err := ValidateSeason(s); err != nil {
		return "", err
	}
	return s, nil
}
