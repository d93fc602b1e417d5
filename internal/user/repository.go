package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is an application user resolved from a verified identity.
type User struct {
	ID        string
	AuthUID   string
	Email     string
	CreatedAt time.Time
}

// Repository is a database-backed repository for users.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// GetByAuthUID retrieves a user by external auth UID. Returns nil, nil if
// not found.
func (r *Repository) GetByAuthUID(ctx context.Context, authUID string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, auth_uid, email, created_at FROM users WHERE auth_uid = ?`, authUID)

	var u User
	if err := row.Scan(&u.ID, &u.AuthUID, &u.Email, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by auth UID: %w", err)
	}
	return &u, nil
}

// GetOrCreate resolves the user record for a verified identity, creating
// it on first sight.
func (r *Repository) GetOrCreate(ctx context.Context, authUID, email string) (*User, error) {
	existing, err := r.GetByAuthUID(ctx, authUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	u := User{
		ID:        uuid.NewString(),
		AuthUID:   authUID,
		Email:     email,
		CreatedAt: time.Now(),
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, auth_uid, email, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.AuthUID, u.Email, u.CreatedAt)
	if err != nil {
		// Another request may have created the user concurrently.
		if created, getErr := r.GetByAuthUID(ctx, authUID); getErr == nil && created != nil {
			return created, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}
