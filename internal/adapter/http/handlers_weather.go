package http

import (
	"context"
	"net/http"

	"github.com/couchcryptid/weather-gateway/internal/adapter/weatherapi"
)

// handleWeatherFor adapts one typed weather service method into a proxy handler.
// Query parameters are passed through to the upstream API unchanged.
func handleWeatherFor[T any](s *Server, fetch func(context.Context, weatherapi.Query) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := weatherapi.Query{
			Date:            r.URL.Query().Get("date"),
			PaginationToken: r.URL.Query().Get("pagination_token"),
		}

		resp, err := fetch(r.Context(), q)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
