package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/couchcryptid/weather-gateway/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateUser inserts a new user with the given pre-hashed password.
func (s *Store) CreateUser(ctx context.Context, in domain.UserCreate, hashedPassword string) (domain.User, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	user := domain.User{
		ID:             uuid.New(),
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: hashedPassword,
		IsActive:       active,
		IsSuperuser:    in.IsSuperuser,
	}

	const q = `
		INSERT INTO users (id, email, hashed_password, full_name, is_active, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, q,
		user.ID, user.Email, user.HashedPassword, user.FullName, user.IsActive, user.IsSuperuser,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

// GetUserByID returns the user with the given id, or domain.ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var user domain.User
	const q = `SELECT * FROM users WHERE id = $1`
	if err := s.db.GetContext(ctx, &user, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("selecting user by id: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns the user with the given email, or domain.ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	const q = `SELECT * FROM users WHERE email = $1`
	if err := s.db.GetContext(ctx, &user, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("selecting user by email: %w", err)
	}
	return user, nil
}

// ListUsers returns one page of users ordered by creation time, plus the
// total user count.
func (s *Store) ListUsers(ctx context.Context, skip, limit int) (domain.UsersPage, error) {
	page := domain.UsersPage{Data: []domain.User{}}

	const countQ = `SELECT count(*) FROM users`
	if err := s.db.GetContext(ctx, &page.Count, countQ); err != nil {
		return domain.UsersPage{}, fmt.Errorf("counting users: %w", err)
	}

	const q = `SELECT * FROM users ORDER BY created_at, id OFFSET $1 LIMIT $2`
	if err := s.db.SelectContext(ctx, &page.Data, q, skip, limit); err != nil {
		return domain.UsersPage{}, fmt.Errorf("listing users: %w", err)
	}
	return page, nil
}

// UpdateUser applies the non-nil fields of in to the stored user and returns
// the updated row. hashedPassword is applied only when non-empty.
func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, in domain.UserUpdate, hashedPassword string) (domain.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		user.IsSuperuser = *in.IsSuperuser
	}
	if hashedPassword != "" {
		user.HashedPassword = hashedPassword
	}

	const q = `
		UPDATE users
		SET email = $2, hashed_password = $3, full_name = $4,
		    is_active = $5, is_superuser = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err = s.db.QueryRowxContext(ctx, q,
		user.ID, user.Email, user.HashedPassword, user.FullName, user.IsActive, user.IsSuperuser,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// UpdateUserPassword replaces the stored password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	const q = `UPDATE users SET hashed_password = $2, updated_at = now() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id, hashedPassword)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteUser removes the user and, via the schema's cascade, their items.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
