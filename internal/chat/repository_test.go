package chat

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"meal-genie/internal/database"
)

func setupChatRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestChatRepositoryRoundTrip(t *testing.T) {
	repo := setupChatRepo(t)
	ctx := context.Background()
	now := time.Now()

	rec := Record{
		ID:        "chat-1",
		UserID:    "user-1",
		Title:     "New Conversation",
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, &rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "chat-1", "user-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected record, got nil")
	}
	if got.Title != "New Conversation" {
		t.Errorf("Expected default title, got %q", got.Title)
	}
	if len(got.Messages) != 0 {
		t.Errorf("Expected empty message list, got %d messages", len(got.Messages))
	}

	// Owner scoping: another user cannot read the chat.
	other, err := repo.GetByID(ctx, "chat-1", "user-2")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if other != nil {
		t.Error("Expected nil for non-owner lookup")
	}
}

func TestChatRepositoryUpdateMessages(t *testing.T) {
	repo := setupChatRepo(t)
	ctx := context.Background()
	now := time.Now()

	rec := Record{ID: "chat-1", UserID: "user-1", Title: "New Conversation", CreatedAt: now, UpdatedAt: now}
	if err := repo.Create(ctx, &rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	messages := []Message{
		{Content: "Hello", IsUser: true, Timestamp: now},
		{Content: "Hi! How can I help?", IsUser: false, Timestamp: now},
	}
	if err := repo.Update(ctx, "chat-1", "Greeting", messages, now.Add(time.Minute)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "chat-1", "user-1")
	if got.Title != "Greeting" {
		t.Errorf("Expected updated title, got %q", got.Title)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(got.Messages))
	}
	if !got.Messages[0].IsUser || got.Messages[1].IsUser {
		t.Error("Message roles did not survive round trip")
	}
}

func TestChatRepositoryListByUser(t *testing.T) {
	repo := setupChatRepo(t)
	ctx := context.Background()

	for i, id := range []string{"chat-a", "chat-b"} {
		ts := time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
		rec := Record{ID: id, UserID: "user-1", Title: "t", CreatedAt: ts, UpdatedAt: ts}
		if err := repo.Create(ctx, &rec); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	records, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 chats, got %d", len(records))
	}
	if records[0].ID != "chat-b" {
		t.Errorf("Expected most recently updated first, got %s", records[0].ID)
	}
}
