// Package http exposes the gateway's HTTP API: token auth, user and item
// CRUD, proxied weather endpoints, and operational routes.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-gateway/internal/adapter/kafka"
	"github.com/couchcryptid/weather-gateway/internal/adapter/weatherapi"
	"github.com/couchcryptid/weather-gateway/internal/auth"
	"github.com/couchcryptid/weather-gateway/internal/domain"
	"github.com/couchcryptid/weather-gateway/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// UserStore is the persistence surface the user handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, in domain.UserCreate, hashedPassword string) (domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context, skip, limit int) (domain.UsersPage, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in domain.UserUpdate, hashedPassword string) (domain.User, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// ItemStore is the persistence surface the item handlers need.
type ItemStore interface {
	CreateItem(ctx context.Context, ownerID uuid.UUID, in domain.ItemCreate) (domain.Item, error)
	GetItemByID(ctx context.Context, id uuid.UUID) (domain.Item, error)
	ListItems(ctx context.Context, skip, limit int) (domain.ItemsPage, error)
	ListItemsByOwner(ctx context.Context, ownerID uuid.UUID, skip, limit int) (domain.ItemsPage, error)
	UpdateItem(ctx context.Context, id uuid.UUID, in domain.ItemUpdate) (domain.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// WeatherService is the normalized weather surface the proxy handlers need.
type WeatherService interface {
	TwoHourForecast(ctx context.Context, q weatherapi.Query) (domain.WeatherResponse, error)
	TwentyFourHourForecast(ctx context.Context, q weatherapi.Query) (domain.TwentyFourHourForecastResponse, error)
	FourDayForecast(ctx context.Context, q weatherapi.Query) (domain.FourDayForecastResponse, error)
	AirTemperature(ctx context.Context, q weatherapi.Query) (domain.AirTemperatureResponse, error)
	WindDirection(ctx context.Context, q weatherapi.Query) (domain.WindDirectionResponse, error)
	Lightning(ctx context.Context, q weatherapi.Query) (domain.LightningResponse, error)
	WBGT(ctx context.Context, q weatherapi.Query) (domain.WBGTResponse, error)
}

// AuditPublisher records entity mutations. May be nil when auditing is
// disabled.
type AuditPublisher interface {
	Publish(ctx context.Context, event kafka.AuditEvent)
}

// Deps bundles the collaborators the server needs.
type Deps struct {
	Users   UserStore
	Items   ItemStore
	Weather WeatherService
	Auth    *auth.Manager
	Ready   ReadinessChecker
	Audit   AuditPublisher
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Server is the gateway HTTP server.
type Server struct {
	httpServer *http.Server
	users      UserStore
	items      ItemStore
	weather    WeatherService
	auth       *auth.Manager
	audit      AuditPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	validate   *validator.Validate
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		users:    deps.Users,
		items:    deps.Items,
		weather:  deps.Weather,
		auth:     deps.Auth,
		audit:    deps.Audit,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		validate: validator.New(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.route(mux, "POST /api/v1/login/access-token", s.handleLogin)

	s.route(mux, "POST /api/v1/users/signup", s.handleSignup)
	s.route(mux, "GET /api/v1/users", s.requireSuperuser(s.handleListUsers))
	s.route(mux, "POST /api/v1/users", s.requireSuperuser(s.handleCreateUser))
	s.route(mux, "GET /api/v1/users/me", s.requireUser(s.handleGetMe))
	s.route(mux, "PATCH /api/v1/users/me", s.requireUser(s.handleUpdateMe))
	s.route(mux, "PATCH /api/v1/users/me/password", s.requireUser(s.handleUpdatePassword))
	s.route(mux, "GET /api/v1/users/{id}", s.requireUser(s.handleGetUser))
	s.route(mux, "PATCH /api/v1/users/{id}", s.requireSuperuser(s.handleUpdateUser))
	s.route(mux, "DELETE /api/v1/users/{id}", s.requireSuperuser(s.handleDeleteUser))

	s.route(mux, "GET /api/v1/items", s.requireUser(s.handleListItems))
	s.route(mux, "POST /api/v1/items", s.requireUser(s.handleCreateItem))
	s.route(mux, "GET /api/v1/items/{id}", s.requireUser(s.handleGetItem))
	s.route(mux, "PUT /api/v1/items/{id}", s.requireUser(s.handleUpdateItem))
	s.route(mux, "DELETE /api/v1/items/{id}", s.requireUser(s.handleDeleteItem))

	s.route(mux, "GET /api/v1/weather/two-hour-forecast", handleWeatherFor(s, s.weather.TwoHourForecast))
	s.route(mux, "GET /api/v1/weather/twenty-four-hour-forecast", handleWeatherFor(s, s.weather.TwentyFourHourForecast))
	s.route(mux, "GET /api/v1/weather/four-day-forecast", handleWeatherFor(s, s.weather.FourDayForecast))
	s.route(mux, "GET /api/v1/weather/air-temperature", handleWeatherFor(s, s.weather.AirTemperature))
	s.route(mux, "GET /api/v1/weather/wind-direction", handleWeatherFor(s, s.weather.WindDirection))
	s.route(mux, "GET /api/v1/weather/lightning", handleWeatherFor(s, s.weather.Lightning))
	s.route(mux, "GET /api/v1/weather/wbgt", handleWeatherFor(s, s.weather.WBGT))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
