package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository is a database-backed repository for chat records.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Create stores a new chat record.
func (r *Repository) Create(ctx context.Context, rec *Record) error {
	messages, err := marshalMessages(rec.Messages)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO chats (id, user_id, title, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Title, messages, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// GetByID retrieves a chat owned by the given user. Returns nil, nil if
// not found.
func (r *Repository) GetByID(ctx context.Context, id, userID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, messages, created_at, updated_at
		FROM chats WHERE id = ? AND user_id = ?`, id, userID)

	rec, err := scanChat(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat by ID: %w", err)
	}
	return rec, nil
}

// ListByUser retrieves all chats for a user, most recently updated first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, messages, created_at, updated_at
		FROM chats WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat rows: %w", err)
	}
	return records, nil
}

// Update replaces a chat's messages and title and bumps its updated
// timestamp.
func (r *Repository) Update(ctx context.Context, id string, title string, msgs []Message, at time.Time) error {
	messages, err := marshalMessages(msgs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE chats SET title = ?, messages = ?, updated_at = ? WHERE id = ?`,
		title, messages, at, id)
	if err != nil {
		return fmt.Errorf("failed to update chat: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*Record, error) {
	var rec Record
	var messages string
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &messages, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if messages != "" {
		if err := json.Unmarshal([]byte(messages), &rec.Messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat messages: %w", err)
		}
	}
	if rec.Messages == nil {
		rec.Messages = []Message{}
	}
	return &rec, nil
}

func marshalMessages(msgs []Message) (string, error) {
	if msgs == nil {
		msgs = []Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat messages: %w", err)
	}
	return string(data), nil
}
