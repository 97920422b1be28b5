package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors surfaced by the store layer. Handlers translate these to
// HTTP status codes.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is a registered account. HashedPassword never leaves the service.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	FullName       string    `db:"full_name" json:"full_name,omitempty"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	IsSuperuser    bool      `db:"is_superuser" json:"is_superuser"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`
}

// UserCreate is the superuser-facing creation payload.
type UserCreate struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=40"`
	FullName    string `json:"full_name" validate:"max=255"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UserRegister is the open signup payload.
type UserRegister struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=40"`
	FullName string `json:"full_name" validate:"max=255"`
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=40"`
	FullName    *string `json:"full_name" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UserUpdateMe is the self-service profile update payload.
type UserUpdateMe struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
}

// UpdatePassword is the self-service password change payload.
type UpdatePassword struct {
	CurrentPassword string `json:"current_password" validate:"required,min=8,max=40"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=40"`
}

// UsersPage is a paginated user listing with the total row count.
type UsersPage struct {
	Data  []User `json:"data"`
	Count int    `json:"count"`
}

// Item is a user-owned record. Deleting the owner cascades to their items.
type Item struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// ItemCreate is the item creation payload.
type ItemCreate struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// ItemUpdate is a partial item update; nil fields are left unchanged.
type ItemUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// ItemsPage is a paginated item listing with the total row count.
type ItemsPage struct {
	Data  []Item `json:"data"`
	Count int    `json:"count"`
}

// Token is the access-token response issued on login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Message is a generic acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
