package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/weather-gateway/internal/domain"
)

// authedHandler is a handler that runs with a resolved, active user.
type authedHandler func(w http.ResponseWriter, r *http.Request, user domain.User)

// route registers a handler wrapped with request logging and duration
// metrics. The pattern's path (without the method or wildcards expanded) is
// used as the route label to keep metric cardinality bounded.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")

	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h(rec, r)

		elapsed := time.Since(start)
		s.metrics.RequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
		s.logger.Info("request handled",
			"method", method,
			"route", path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// requireUser resolves the bearer token to an active user before invoking h.
func (s *Server) requireUser(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		h(w, r, user)
	}
}

// requireSuperuser additionally rejects non-superusers with 403.
func (s *Server) requireSuperuser(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		if !user.IsSuperuser {
			writeError(w, http.StatusForbidden, "The user doesn't have enough privileges")
			return
		}
		h(w, r, user)
	}
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return domain.User{}, false
	}

	userID, err := s.auth.ParseToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return domain.User{}, false
	}

	user, err := s.users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return domain.User{}, false
	}
	if !user.IsActive {
		writeError(w, http.StatusForbidden, "Inactive user")
		return domain.User{}, false
	}
	return user, true
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
