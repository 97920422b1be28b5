//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/couchcryptid/weather-gateway/internal/adapter/postgres"
	"github.com/couchcryptid/weather-gateway/internal/domain"
)

// startPostgres runs a disposable Postgres container and returns a connection
// URL for it.
func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gateway_test"),
		tcpostgres.WithUsername("gateway"),
		tcpostgres.WithPassword("gateway"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

func newStore(ctx context.Context, t *testing.T) *postgres.Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := postgres.Connect(startPostgres(ctx, t), 5, logger)
	require.NoError(t, err, "connect and migrate")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestUserCRUDRoundTrip verifies user persistence against a real database,
// including the unique-email constraint and the migration-created schema.
func TestUserCRUDRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := newStore(ctx, t)

	created, err := store.CreateUser(ctx, domain.UserCreate{
		Email:    "alice@example.com",
		FullName: "Alice",
	}, "hashed-password")
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = store.CreateUser(ctx, domain.UserCreate{Email: "alice@example.com"}, "other")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hashed-password", byEmail.HashedPassword)

	newName := "Alice Cooper"
	updated, err := store.UpdateUser(ctx, created.ID, domain.UserUpdate{FullName: &newName}, "")
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.FullName)
	assert.Equal(t, "alice@example.com", updated.Email)

	require.NoError(t, store.UpdateUserPassword(ctx, created.ID, "new-hash"))
	byID, err := store.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", byID.HashedPassword)

	page, err := store.ListUsers(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Data, 1)

	require.NoError(t, store.DeleteUser(ctx, created.ID))
	_, err = store.GetUserByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestItemOwnershipAndCascade verifies item persistence, per-owner listing,
// and that deleting a user cascades to their items.
func TestItemOwnershipAndCascade(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := newStore(ctx, t)

	alice, err := store.CreateUser(ctx, domain.UserCreate{Email: "alice@example.com"}, "h1")
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, domain.UserCreate{Email: "bob@example.com"}, "h2")
	require.NoError(t, err)

	desc := "a thing"
	item, err := store.CreateItem(ctx, alice.ID, domain.ItemCreate{Title: "Widget", Description: &desc})
	require.NoError(t, err)
	_, err = store.CreateItem(ctx, bob.ID, domain.ItemCreate{Title: "Gadget"})
	require.NoError(t, err)

	alicePage, err := store.ListItemsByOwner(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, alicePage.Count)
	require.Len(t, alicePage.Data, 1)
	assert.Equal(t, "Widget", alicePage.Data[0].Title)

	allPage, err := store.ListItems(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, allPage.Count)

	newTitle := "Renamed"
	updated, err := store.UpdateItem(ctx, item.ID, domain.ItemUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)

	// Deleting the owner removes their items through the FK cascade.
	require.NoError(t, store.DeleteUser(ctx, alice.ID))
	_, err = store.GetItemByID(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	remaining, err := store.ListItems(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining.Count)
}

// TestScanUserInsertedBySQL verifies a row written outside the store, leaning
// on the schema's column defaults, still scans into the domain type.
func TestScanUserInsertedBySQL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	url := startPostgres(ctx, t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := postgres.Connect(url, 5, logger)
	require.NoError(t, err, "connect and migrate")
	t.Cleanup(func() { _ = store.Close() })

	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	id := uuid.New()
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, email, hashed_password) VALUES ($1, $2, $3)`,
		id, "carol@example.com", "h3")
	require.NoError(t, err)

	user, err := store.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", user.FullName)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.False(t, user.CreatedAt.IsZero())
}

// TestEnsureSuperuserIdempotent verifies the bootstrap seeding runs safely on
// every startup.
func TestEnsureSuperuserIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := newStore(ctx, t)

	require.NoError(t, store.EnsureSuperuser(ctx, "admin@example.com", "changethis-now"))
	require.NoError(t, store.EnsureSuperuser(ctx, "admin@example.com", "changethis-now"))

	page, err := store.ListUsers(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].IsSuperuser)
	assert.True(t, page.Data[0].IsActive)
}
