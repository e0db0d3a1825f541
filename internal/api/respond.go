package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shutterdesk/internal/domain"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps sentinel error kinds to HTTP statuses. Transient
// store failures stay 500 but are flagged retryable so the dashboard can
// repeat the call instead of surfacing it.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConsistency):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTransientStore):
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("transient store failure")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     "temporary storage failure",
			"retryable": true,
		})
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled handler error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, domain.ErrValidation)
	}
	return id, nil
}

// queryID parses an optional int64 query parameter; absence returns 0.
func queryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, domain.ErrValidation)
	}
	return id, nil
}
