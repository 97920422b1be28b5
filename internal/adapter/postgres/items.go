package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/couchcryptid/weather-gateway/internal/domain"
)

// CreateItem inserts a new item owned by ownerID.
func (s *Store) CreateItem(ctx context.Context, ownerID uuid.UUID, in domain.ItemCreate) (domain.Item, error) {
	item := domain.Item{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     ownerID,
	}

	const q = `
		INSERT INTO items (id, title, description, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, q,
		item.ID, item.Title, item.Description, item.OwnerID,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.Item{}, fmt.Errorf("inserting item: %w", err)
	}
	return item, nil
}

// GetItemByID returns the item with the given id, or domain.ErrNotFound.
func (s *Store) GetItemByID(ctx context.Context, id uuid.UUID) (domain.Item, error) {
	var item domain.Item
	const q = `SELECT * FROM items WHERE id = $1`
	if err := s.db.GetContext(ctx, &item, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, domain.ErrNotFound
		}
		return domain.Item{}, fmt.Errorf("selecting item by id: %w", err)
	}
	return item, nil
}

// ListItems returns one page of all items, ordered by creation time, plus the
// total count. Used by superusers.
func (s *Store) ListItems(ctx context.Context, skip, limit int) (domain.ItemsPage, error) {
	page := domain.ItemsPage{Data: []domain.Item{}}

	const countQ = `SELECT count(*) FROM items`
	if err := s.db.GetContext(ctx, &page.Count, countQ); err != nil {
		return domain.ItemsPage{}, fmt.Errorf("counting items: %w", err)
	}

	const q = `SELECT * FROM items ORDER BY created_at, id OFFSET $1 LIMIT $2`
	if err := s.db.SelectContext(ctx, &page.Data, q, skip, limit); err != nil {
		return domain.ItemsPage{}, fmt.Errorf("listing items: %w", err)
	}
	return page, nil
}

// ListItemsByOwner returns one page of the owner's items plus their total
// count.
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID uuid.UUID, skip, limit int) (domain.ItemsPage, error) {
	page := domain.ItemsPage{Data: []domain.Item{}}

	const countQ = `SELECT count(*) FROM items WHERE owner_id = $1`
	if err := s.db.GetContext(ctx, &page.Count, countQ, ownerID); err != nil {
		return domain.ItemsPage{}, fmt.Errorf("counting items by owner: %w", err)
	}

	const q = `SELECT * FROM items WHERE owner_id = $1 ORDER BY created_at, id OFFSET $2 LIMIT $3`
	if err := s.db.SelectContext(ctx, &page.Data, q, ownerID, skip, limit); err != nil {
		return domain.ItemsPage{}, fmt.Errorf("listing items by owner: %w", err)
	}
	return page, nil
}

// UpdateItem applies the non-nil fields of in to the stored item and returns
// the updated row.
func (s *Store) UpdateItem(ctx context.Context, id uuid.UUID, in domain.ItemUpdate) (domain.Item, error) {
	item, err := s.GetItemByID(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}

	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.Description != nil {
		item.Description = in.Description
	}

	const q = `
		UPDATE items
		SET title = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err = s.db.QueryRowxContext(ctx, q, item.ID, item.Title, item.Description).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, domain.ErrNotFound
		}
		return domain.Item{}, fmt.Errorf("updating item: %w", err)
	}
	return item, nil
}

// DeleteItem removes the item with the given id.
func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM items WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
