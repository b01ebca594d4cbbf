// Package markov estimates first-order W/D/L transition matrices from match history.
package markov

import (
	"encoding/json"
	"fmt"
	"strings"

	"league-markov/internal/domain"
)

// TransitionMatrix maps a predecessor result to a probability distribution over successors.
//
// Rows are the predecessor states observed at least once, columns the successor
// states observed at least once, both in canonical W, D, L order. Each row sums to 1.
// A matrix is immutable once built.
type TransitionMatrix struct {
	rows  []domain.Result
	cols  []domain.Result
	probs map[domain.Result][]float64 // aligned with cols
}

// FromCounts builds a matrix from raw pair counts, normalizing each row.
// Rows with a zero total are dropped.
func FromCounts(counts map[domain.Result]map[domain.Result]int) *TransitionMatrix {
	m := &TransitionMatrix{probs: make(map[domain.Result][]float64)}

	seenCol := make(map[domain.Result]bool)
	for _, successors := range counts {
		for to, n := range successors {
			if n > 0 {
				seenCol[to] = true
			}
		}
	}
	for _, s := range domain.States {
		if seenCol[s] {
			m.cols = append(m.cols, s)
		}
	}

	for _, from := range domain.States {
		successors := counts[from]
		total := 0
		for _, to := range m.cols {
			total += successors[to]
		}
		if total == 0 {
			continue
		}

		row := make([]float64, len(m.cols))
		for j, to := range m.cols {
			row[j] = float64(successors[to]) / float64(total)
		}
		m.rows = append(m.rows, from)
		m.probs[from] = row
	}

	return m
}

// Rows returns the predecessor states present in the matrix.
func (m *TransitionMatrix) Rows() []domain.Result {
	if m == nil {
		return nil
	}
	return append([]domain.Result(nil), m.rows...)
}

// Columns returns the successor states present in the matrix.
func (m *TransitionMatrix) Columns() []domain.Result {
	if m == nil {
		return nil
	}
	return append([]domain.Result(nil), m.cols...)
}

// IsEmpty reports whether the matrix has no rows.
func (m *TransitionMatrix) IsEmpty() bool {
	return m == nil || len(m.rows) == 0
}

// HasRow reports whether state was observed as a predecessor.
func (m *TransitionMatrix) HasRow(state domain.Result) bool {
	if m == nil {
		return false
	}
	_, ok := m.probs[state]
	return ok
}

// Row returns a copy of the distribution for state, aligned with Columns.
func (m *TransitionMatrix) Row(state domain.Result) ([]float64, bool) {
	if m == nil {
		return nil, false
	}
	row, ok := m.probs[state]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), row...), true
}

// Prob returns P(to | from), 0 when either state is absent.
func (m *TransitionMatrix) Prob(from, to domain.Result) float64 {
	if m == nil {
		return 0
	}
	row, ok := m.probs[from]
	if !ok {
		return 0
	}
	for j, c := range m.cols {
		if c == to {
			return row[j]
		}
	}
	return 0
}

// MarshalJSON encodes the matrix as {"W": {"W": 0.5, "D": 0.5}, ...}.
func (m *TransitionMatrix) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	out := make(map[string]map[string]float64, len(m.rows))
	for _, from := range m.rows {
		row := make(map[string]float64, len(m.cols))
		for j, to := range m.cols {
			row[string(to)] = m.probs[from][j]
		}
		out[string(from)] = row
	}
	return json.Marshal(out)
}

// String renders the matrix as a small text grid.
func (m *TransitionMatrix) String() string {
	if m.IsEmpty() {
		return "(empty)"
	}
	var sb strings.Builder
	sb.WriteString("from\\to")
	for _, c := range m.cols {
		sb.WriteString(fmt.Sprintf("\t%s", c))
	}
	for _, r := range m.rows {
		sb.WriteString("\n" + string(r))
		for _, p := range m.probs[r] {
			sb.WriteString(fmt.Sprintf("\t%.3f", p))
		}
	}
	return sb.String()
}
