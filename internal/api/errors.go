package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"league-markov/internal/orchestrator"
	"league-markov/internal/prepare"
	"league-markov/internal/simulation"
	"league-markov/internal/storage"
)

// errBadRequest marks malformed query parameters.
var errBadRequest = errors.New("bad request")

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		schemaErr *prepare.SchemaError
		dateErr   *prepare.DateParseError
		valueErr  *prepare.ValueError
		emptyErr  *simulation.EmptyDistributionError
	)

	switch {
	case errors.Is(err, orchestrator.ErrInvalidSeason),
		errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrNoData),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &schemaErr),
		errors.As(err, &dateErr),
		errors.As(err, &valueErr),
		errors.As(err, &emptyErr),
		errors.Is(err, simulation.ErrMissingPredecessor):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := h.logger.WithError(err).WithField("request_id", requestID(r))
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), RequestID: requestID(r)})
}
