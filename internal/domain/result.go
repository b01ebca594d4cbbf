package domain

import "strings"

// Result is the outcome of a match from the subject team's perspective.
type Result string

const (
	ResultWin  Result = "W"
	ResultDraw Result = "D"
	ResultLoss Result = "L"

	// ResultUnknown marks a fixture without a recorded outcome (not yet played).
	ResultUnknown Result = ""
)

// States lists the Markov chain states in canonical order.
var States = []Result{ResultWin, ResultDraw, ResultLoss}

// String returns the string representation of Result.
func (r Result) String() string {
	return string(r)
}

// IsValid checks if the result is one of W, D, L.
func (r Result) IsValid() bool {
	return r == ResultWin || r == ResultDraw || r == ResultLoss
}

// Points returns league points for the result: 3 for a win, 1 for a draw, 0 otherwise.
func (r Result) Points() int {
	switch r {
	case ResultWin:
		return 3
	case ResultDraw:
		return 1
	default:
		return 0
	}
}

// ParseResult maps a raw result cell to a Result.
// Anything other than W, D or L (after trimming) yields ResultUnknown.
func ParseResult(s string) Result {
	r := Result(strings.ToUpper(strings.TrimSpace(s)))
	if r.IsValid() {
		return r
	}
	return ResultUnknown
}
