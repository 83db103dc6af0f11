package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pickme/voting/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeDomainError maps the core error taxonomy onto HTTP statuses so the
// caller can always tell "already voted" from "session closed".
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrCandidateNotFound),
		errors.Is(err, domain.ErrPositionNotFound),
		errors.Is(err, domain.ErrOrganizationNotFound),
		errors.Is(err, domain.ErrResultNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrDuplicateVote):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNotAdmin):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrResultsNotReady):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrSessionNotPending),
		errors.Is(err, domain.ErrSessionActive),
		errors.Is(err, domain.ErrSessionNotStarted),
		errors.Is(err, domain.ErrCandidateSessionMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
