// Package postgres implements the relational store for users and items.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/couchcryptid/weather-gateway/internal/auth"
	"github.com/couchcryptid/weather-gateway/internal/domain"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store wraps the database handle shared by the user and item repositories.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Connect opens the database, verifies connectivity, and applies pending
// migrations.
func Connect(databaseURL string, maxOpenConns int, logger *slog.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(databaseURL); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing database handle without running migrations.
// Used by tests that manage their own schema.
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) migrate(databaseURL string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("initializing migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, _, _ := m.Version()
	s.logger.Info("database migrations applied", "version", version)
	return nil
}

// CheckReadiness reports whether the database is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSuperuser creates the bootstrap superuser if no account with the
// given email exists. Idempotent across restarts.
func (s *Store) EnsureSuperuser(ctx context.Context, email, password string) error {
	_, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing superuser password: %w", err)
	}

	active := true
	_, err = s.CreateUser(ctx, domain.UserCreate{
		Email:       email,
		FullName:    "Superuser",
		IsActive:    &active,
		IsSuperuser: true,
	}, hashed)
	if err != nil {
		return fmt.Errorf("seeding superuser: %w", err)
	}

	s.logger.Info("superuser created", "email", email)
	return nil
}
