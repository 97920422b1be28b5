package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/weather-gateway/internal/adapter/http"
	"github.com/couchcryptid/weather-gateway/internal/adapter/kafka"
	"github.com/couchcryptid/weather-gateway/internal/adapter/weatherapi"
	"github.com/couchcryptid/weather-gateway/internal/auth"
	"github.com/couchcryptid/weather-gateway/internal/domain"
	"github.com/couchcryptid/weather-gateway/internal/normalize"
	"github.com/couchcryptid/weather-gateway/internal/observability"
)

// --- mocks ---

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockUserStore struct {
	users map[uuid.UUID]domain.User
	err   error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[uuid.UUID]domain.User{}}
}

func (m *mockUserStore) add(u domain.User) domain.User {
	m.users[u.ID] = u
	return u
}

func (m *mockUserStore) CreateUser(_ context.Context, in domain.UserCreate, hashedPassword string) (domain.User, error) {
	if m.err != nil {
		return domain.User{}, m.err
	}
	for _, u := range m.users {
		if u.Email == in.Email {
			return domain.User{}, domain.ErrDuplicateEmail
		}
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	u := domain.User{
		ID:             uuid.New(),
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: hashedPassword,
		IsActive:       active,
		IsSuperuser:    in.IsSuperuser,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) GetUserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *mockUserStore) ListUsers(_ context.Context, skip, limit int) (domain.UsersPage, error) {
	page := domain.UsersPage{Data: []domain.User{}, Count: len(m.users)}
	for _, u := range m.users {
		page.Data = append(page.Data, u)
	}
	return page, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, id uuid.UUID, in domain.UserUpdate, hashedPassword string) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		u.IsSuperuser = *in.IsSuperuser
	}
	if hashedPassword != "" {
		u.HashedPassword = hashedPassword
	}
	m.users[id] = u
	return u, nil
}

func (m *mockUserStore) UpdateUserPassword(_ context.Context, id uuid.UUID, hashedPassword string) error {
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	m.users[id] = u
	return nil
}

func (m *mockUserStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type mockItemStore struct {
	items map[uuid.UUID]domain.Item
}

func newMockItemStore() *mockItemStore {
	return &mockItemStore{items: map[uuid.UUID]domain.Item{}}
}

func (m *mockItemStore) CreateItem(_ context.Context, ownerID uuid.UUID, in domain.ItemCreate) (domain.Item, error) {
	item := domain.Item{ID: uuid.New(), Title: in.Title, Description: in.Description, OwnerID: ownerID}
	m.items[item.ID] = item
	return item, nil
}

func (m *mockItemStore) GetItemByID(_ context.Context, id uuid.UUID) (domain.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	return item, nil
}

func (m *mockItemStore) ListItems(_ context.Context, skip, limit int) (domain.ItemsPage, error) {
	page := domain.ItemsPage{Data: []domain.Item{}}
	for _, item := range m.items {
		page.Data = append(page.Data, item)
	}
	page.Count = len(page.Data)
	return page, nil
}

func (m *mockItemStore) ListItemsByOwner(_ context.Context, ownerID uuid.UUID, skip, limit int) (domain.ItemsPage, error) {
	page := domain.ItemsPage{Data: []domain.Item{}}
	for _, item := range m.items {
		if item.OwnerID == ownerID {
			page.Data = append(page.Data, item)
		}
	}
	page.Count = len(page.Data)
	return page, nil
}

func (m *mockItemStore) UpdateItem(_ context.Context, id uuid.UUID, in domain.ItemUpdate) (domain.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.Description != nil {
		item.Description = in.Description
	}
	m.items[id] = item
	return item, nil
}

func (m *mockItemStore) DeleteItem(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type mockWeather struct {
	twoHour domain.WeatherResponse
	err     error
}

func (m *mockWeather) TwoHourForecast(_ context.Context, _ weatherapi.Query) (domain.WeatherResponse, error) {
	return m.twoHour, m.err
}

func (m *mockWeather) TwentyFourHourForecast(_ context.Context, _ weatherapi.Query) (domain.TwentyFourHourForecastResponse, error) {
	return domain.TwentyFourHourForecastResponse{}, m.err
}

func (m *mockWeather) FourDayForecast(_ context.Context, _ weatherapi.Query) (domain.FourDayForecastResponse, error) {
	return domain.FourDayForecastResponse{}, m.err
}

func (m *mockWeather) AirTemperature(_ context.Context, _ weatherapi.Query) (domain.AirTemperatureResponse, error) {
	return domain.AirTemperatureResponse{}, m.err
}

func (m *mockWeather) WindDirection(_ context.Context, _ weatherapi.Query) (domain.WindDirectionResponse, error) {
	return domain.WindDirectionResponse{}, m.err
}

func (m *mockWeather) Lightning(_ context.Context, _ weatherapi.Query) (domain.LightningResponse, error) {
	return domain.LightningResponse{}, m.err
}

func (m *mockWeather) WBGT(_ context.Context, _ weatherapi.Query) (domain.WBGTResponse, error) {
	return domain.WBGTResponse{}, m.err
}

type mockAudit struct {
	events []kafka.AuditEvent
}

func (m *mockAudit) Publish(_ context.Context, event kafka.AuditEvent) {
	m.events = append(m.events, event)
}

// --- fixture ---

type fixture struct {
	srv     *httpadapter.Server
	users   *mockUserStore
	items   *mockItemStore
	weather *mockWeather
	audit   *mockAudit
	auth    *auth.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:   newMockUserStore(),
		items:   newMockItemStore(),
		weather: &mockWeather{},
		audit:   &mockAudit{},
		auth:    auth.NewManager("test-secret", time.Hour, clockwork.NewRealClock()),
	}
	f.srv = httpadapter.NewServer(":0", httpadapter.Deps{
		Users:   f.users,
		Items:   f.items,
		Weather: f.weather,
		Auth:    f.auth,
		Ready:   &mockReadiness{},
		Audit:   f.audit,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: observability.NewMetricsForTesting(),
	})
	return f
}

// addUser creates a user with the given password and returns it with a valid
// bearer token.
func (f *fixture) addUser(t *testing.T, email, password string, superuser bool) (domain.User, string) {
	t.Helper()

	hashed, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := f.users.add(domain.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    superuser,
	})

	token, err := f.auth.IssueToken(user.ID)
	require.NoError(t, err)
	return user, token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// --- operational routes ---

func TestHealthzReturns200(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	f := newFixture(t)
	f.srv = httpadapter.NewServer(":0", httpadapter.Deps{
		Users:   f.users,
		Items:   f.items,
		Weather: f.weather,
		Auth:    f.auth,
		Ready:   &mockReadiness{err: fmt.Errorf("db down")},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: observability.NewMetricsForTesting(),
	})

	rec := f.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- auth ---

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodPost, "/api/v1/login/access-token", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	token := decodeBody[domain.Token](t, rec)
	assert.Equal(t, "bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	_, err := f.auth.ParseToken(token.AccessToken)
	assert.NoError(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodPost, "/api/v1/login/access-token", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "Incorrect email or password", body["detail"])
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/login/access-token", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginInactiveUser(t *testing.T) {
	f := newFixture(t)
	hashed, err := auth.HashPassword("secret-password")
	require.NoError(t, err)
	f.users.add(domain.User{
		ID:             uuid.New(),
		Email:          "inactive@example.com",
		HashedPassword: hashed,
		IsActive:       false,
	})

	rec := f.do(t, http.MethodPost, "/api/v1/login/access-token", "", map[string]string{
		"email":    "inactive@example.com",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "Inactive user", body["detail"])
}

func TestMissingBearerToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGarbageBearerToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/users/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSuperuserRouteForbiddenForRegularUser(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodGet, "/api/v1/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// --- users ---

func TestSignup(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users/signup", "", map[string]string{
		"email":     "new@example.com",
		"password":  "long-enough-password",
		"full_name": "New User",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	user := decodeBody[domain.User](t, rec)
	assert.Equal(t, "new@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.NotContains(t, rec.Body.String(), "hashed_password")

	require.Len(t, f.audit.events, 1)
	assert.Equal(t, "user", f.audit.events[0].Entity)
	assert.Equal(t, "create", f.audit.events[0].Action)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "taken@example.com", "secret-password", false)

	rec := f.do(t, http.MethodPost, "/api/v1/users/signup", "", map[string]string{
		"email":    "taken@example.com",
		"password": "long-enough-password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "password": "long-enough"}},
		{"short password", map[string]string{"email": "ok@example.com", "password": "short"}},
		{"missing password", map[string]string{"email": "ok@example.com"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/users/signup", "", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestGetMe(t *testing.T) {
	f := newFixture(t)
	user, token := f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[domain.User](t, rec)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
}

func TestUpdateMe(t *testing.T) {
	f := newFixture(t)
	user, token := f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodPatch, "/api/v1/users/me", token, map[string]string{
		"full_name": "Alice Cooper",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[domain.User](t, rec)
	assert.Equal(t, "Alice Cooper", got.FullName)
	assert.Equal(t, user.Email, got.Email)
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	user, token := f.addUser(t, "alice@example.com", "old-password-1", false)

	rec := f.do(t, http.MethodPatch, "/api/v1/users/me/password", token, map[string]string{
		"current_password": "old-password-1",
		"new_password":     "new-password-2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored := f.users.users[user.ID]
	assert.True(t, auth.VerifyPassword(stored.HashedPassword, "new-password-2"))
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "alice@example.com", "old-password-1", false)

	rec := f.do(t, http.MethodPatch, "/api/v1/users/me/password", token, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "new-password-2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePasswordSameAsCurrent(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "alice@example.com", "old-password-1", false)

	rec := f.do(t, http.MethodPatch, "/api/v1/users/me/password", token, map[string]string{
		"current_password": "old-password-1",
		"new_password":     "old-password-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserAsSuperuser(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "admin@example.com", "admin-password", true)

	rec := f.do(t, http.MethodPost, "/api/v1/users", token, map[string]any{
		"email":        "bob@example.com",
		"password":     "long-enough-password",
		"is_superuser": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[domain.User](t, rec)
	assert.True(t, got.IsSuperuser)
}

func TestListUsersAsSuperuser(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "admin@example.com", "admin-password", true)
	f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodGet, "/api/v1/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decodeBody[domain.UsersPage](t, rec)
	assert.Equal(t, 2, page.Count)
	assert.Len(t, page.Data, 2)
}

func TestGetUserByIDSelf(t *testing.T) {
	f := newFixture(t)
	user, token := f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodGet, "/api/v1/users/"+user.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOtherUserForbiddenForRegularUser(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "alice@example.com", "secret-password", false)
	other, _ := f.addUser(t, "bob@example.com", "secret-password", false)

	rec := f.do(t, http.MethodGet, "/api/v1/users/"+other.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteUserAsSuperuser(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "admin@example.com", "admin-password", true)
	victim, _ := f.addUser(t, "bob@example.com", "secret-password", false)

	rec := f.do(t, http.MethodDelete, "/api/v1/users/"+victim.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := f.users.GetUserByID(context.Background(), victim.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuperuserCannotDeleteSelf(t *testing.T) {
	f := newFixture(t)
	admin, token := f.addUser(t, "admin@example.com", "admin-password", true)

	rec := f.do(t, http.MethodDelete, "/api/v1/users/"+admin.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// --- items ---

func TestCreateAndGetItem(t *testing.T) {
	f := newFixture(t)
	user, token := f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodPost, "/api/v1/items", token, map[string]string{
		"title":       "Widget",
		"description": "a thing",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	item := decodeBody[domain.Item](t, rec)
	assert.Equal(t, "Widget", item.Title)
	assert.Equal(t, user.ID, item.OwnerID)

	rec = f.do(t, http.MethodGet, "/api/v1/items/"+item.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.audit.events, 1)
	assert.Equal(t, "item", f.audit.events[0].Entity)
	assert.Equal(t, "create", f.audit.events[0].Action)
	assert.Equal(t, item.ID.String(), f.audit.events[0].EntityID)
	assert.Equal(t, user.ID.String(), f.audit.events[0].ActorID)
}

func TestListItemsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	alice, aliceToken := f.addUser(t, "alice@example.com", "secret-password", false)
	bob, _ := f.addUser(t, "bob@example.com", "secret-password", false)
	_, adminToken := f.addUser(t, "admin@example.com", "admin-password", true)

	_, err := f.items.CreateItem(context.Background(), alice.ID, domain.ItemCreate{Title: "Alice's"})
	require.NoError(t, err)
	_, err = f.items.CreateItem(context.Background(), bob.ID, domain.ItemCreate{Title: "Bob's"})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/v1/items", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[domain.ItemsPage](t, rec)
	assert.Equal(t, 1, page.Count)

	rec = f.do(t, http.MethodGet, "/api/v1/items", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decodeBody[domain.ItemsPage](t, rec)
	assert.Equal(t, 2, page.Count)
}

func TestGetOtherUsersItemForbidden(t *testing.T) {
	f := newFixture(t)
	_, aliceToken := f.addUser(t, "alice@example.com", "secret-password", false)
	bob, _ := f.addUser(t, "bob@example.com", "secret-password", false)

	item, err := f.items.CreateItem(context.Background(), bob.ID, domain.ItemCreate{Title: "Bob's"})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/v1/items/"+item.ID.String(), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateItem(t *testing.T) {
	f := newFixture(t)
	alice, token := f.addUser(t, "alice@example.com", "secret-password", false)

	item, err := f.items.CreateItem(context.Background(), alice.ID, domain.ItemCreate{Title: "Widget"})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPut, "/api/v1/items/"+item.ID.String(), token, map[string]string{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[domain.Item](t, rec)
	assert.Equal(t, "Renamed", got.Title)
}

func TestDeleteItemNotFound(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodDelete, "/api/v1/items/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemInvalidID(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "alice@example.com", "secret-password", false)

	rec := f.do(t, http.MethodGet, "/api/v1/items/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// --- weather proxy ---

func TestWeatherProxySuccess(t *testing.T) {
	f := newFixture(t)
	f.weather.twoHour = domain.WeatherResponse{
		Code: 0,
		Data: &domain.WeatherData{
			AreaMetadata: []domain.AreaMetadata{},
			Items: []domain.WeatherItem{{
				UpdatedTimestamp: "2024-06-01T08:05:00+08:00",
				Timestamp:        "2024-06-01T08:00:00+08:00",
				Forecasts:        []domain.Forecast{{Area: "Bedok", Forecast: "Showers"}},
			}},
		},
	}

	rec := f.do(t, http.MethodGet, "/api/v1/weather/two-hour-forecast?date=2024-06-01", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[domain.WeatherResponse](t, rec)
	require.NotNil(t, got.Data)
	require.Len(t, got.Data.Items, 1)
	assert.Equal(t, "Showers", got.Data.Items[0].Forecasts[0].Forecast)
}

func TestWeatherProxyErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "transport error",
			err:        &domain.TransportError{Err: fmt.Errorf("dial tcp: connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "Error communicating with weather API: dial tcp: connection refused",
		},
		{
			name:       "upstream error envelope",
			err:        &domain.UpstreamError{Status: 403, Code: 124, Name: "Forbidden", ErrorMsg: "Invalid API key"},
			wantStatus: http.StatusForbidden,
			wantDetail: "Forbidden: Invalid API key",
		},
		{
			name:       "opaque upstream error",
			err:        &domain.OpaqueUpstreamError{Status: 502, Body: "<html>bad gateway</html>"},
			wantStatus: http.StatusBadGateway,
			wantDetail: "Error from weather API: <html>bad gateway</html>",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.weather.err = tc.err

			rec := f.do(t, http.MethodGet, "/api/v1/weather/lightning", "", nil)
			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody[map[string]string](t, rec)
			assert.Equal(t, tc.wantDetail, body["detail"])
		})
	}
}

func TestWeatherProxyNormalizeFailure(t *testing.T) {
	f := newFixture(t)
	f.weather.err = &normalize.Failure{
		Schema: normalize.Lightning,
		Original: &normalize.DecodeError{Fields: []normalize.FieldError{
			{Path: "data.records[0].datetime", Kind: normalize.KindMissing},
		}},
	}

	rec := f.do(t, http.MethodGet, "/api/v1/weather/lightning", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Contains(t, body["detail"], "Error parsing weather data")
}

func TestWeatherRoutesRegistered(t *testing.T) {
	f := newFixture(t)

	paths := []string{
		"/api/v1/weather/two-hour-forecast",
		"/api/v1/weather/twenty-four-hour-forecast",
		"/api/v1/weather/four-day-forecast",
		"/api/v1/weather/air-temperature",
		"/api/v1/weather/wind-direction",
		"/api/v1/weather/lightning",
		"/api/v1/weather/wbgt",
	}
	for _, path := range paths {
		rec := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
