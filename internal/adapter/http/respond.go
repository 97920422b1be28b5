package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/weather-gateway/internal/domain"
	"github.com/couchcryptid/weather-gateway/internal/normalize"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

// writeError emits the {"detail": ...} error body used across the API.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeDomainError maps service and store errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var (
		transportErr *domain.TransportError
		upstreamErr  *domain.UpstreamError
		opaqueErr    *domain.OpaqueUpstreamError
		failure      *normalize.Failure
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "A user with this email already exists")
	case errors.As(err, &transportErr):
		writeError(w, http.StatusServiceUnavailable,
			fmt.Sprintf("Error communicating with weather API: %v", transportErr.Err))
	case errors.As(err, &upstreamErr):
		writeError(w, upstreamErr.Status,
			fmt.Sprintf("%s: %s", upstreamErr.Name, upstreamErr.ErrorMsg))
	case errors.As(err, &opaqueErr):
		writeError(w, opaqueErr.Status,
			fmt.Sprintf("Error from weather API: %s", opaqueErr.Body))
	case errors.As(err, &failure):
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Error parsing weather data: %v", failure))
	default:
		s.logger.Error("unhandled request error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody decodes and validates a JSON request body into dst.
// Returns false after writing the error response.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("Invalid field %q: failed %q validation", verrs[0].Field(), verrs[0].Tag()))
			return false
		}
		writeError(w, http.StatusUnprocessableEntity, "Validation failed")
		return false
	}
	return true
}
