package domain

import "testing"

func TestResult_Points(t *testing.T) {
	tests := []struct {
		result Result
		want   int
	}{
		{ResultWin, 3},
		{ResultDraw, 1},
		{ResultLoss, 0},
		{ResultUnknown, 0},
	}

	for _, tt := range tests {
		if got := tt.result.Points(); got != tt.want {
			t.Errorf("Result(%q).Points() = %d, want %d", tt.result, got, tt.want)
		}
	}
}

func TestParseResult(t *testing.T) {
	tests := map[string]Result{
		"W":   ResultWin,
		" d ": ResultDraw,
		"l":   ResultLoss,
		"":    ResultUnknown,
		"P":   ResultUnknown,
		"W-O": ResultUnknown,
	}

	for in, want := range tests {
		if got := ParseResult(in); got != want {
			t.Errorf("ParseResult(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseVenue(t *testing.T) {
	if v, ok := ParseVenue("Home"); !ok || v != VenueHome {
		t.Errorf("ParseVenue(Home) = %q, %v", v, ok)
	}
	if v, ok := ParseVenue(" away"); !ok || v != VenueAway {
		t.Errorf("ParseVenue(away) = %q, %v", v, ok)
	}
	if _, ok := ParseVenue("Neutral"); ok {
		t.Error("ParseVenue(Neutral) should fail")
	}
}
