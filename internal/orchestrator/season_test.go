package orchestrator

import (
	"errors"
	"testing"
)

func TestParseSeason(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-2025", "2024-2025"},
		{"2024/2025", "2024-2025"},
		{"2024-25", "2024-2025"},
		{" 2023/24 ", "2023-2024"},
		{"1999-2000", "1999-2000"},
		{"1999-00", "1999-2000"},
		{"1999/00", "1999-2000"},
		{"2099-00", "2099-2100"},
	}

	for _, tt := range tests {
		got, err := ParseSeason(tt.input)
		if err != nil {
			t.Errorf("ParseSeason(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeason(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseSeason_Invalid(t *testing.T) {
	for _, input := range []string{"", "2024", "2024-2026", "2025-2024", "24-25", "abcd-efgh", "2024_2025", "2024-2025x", "1999-01", "2024-24", "2024-2x"} {
		if _, err := ParseSeason(input); !errors.Is(err, ErrInvalidSeason) {
			t.Errorf("ParseSeason(%q): expected ErrInvalidSeason, got %v", input, err)
		}
	}
}

func TestValidateSeason(t *testing.T) {
	if err := ValidateSeason("2024-2025"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateSeason("2024/2025"); !errors.Is(err, ErrInvalidSeason) {
		t.Errorf("expected ErrInvalidSeason for slash form, got %v", err)
	}
}
