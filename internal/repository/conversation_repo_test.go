package repository

import (
	"context"
	"errors"
	"testing"

	"tutor-llm/internal/domain"
)

func seed() []domain.Message {
	return []domain.Message{{ID: "sys", Role: domain.RoleSystem, Content: domain.TutorPersona}}
}

func TestMemoryConversationRepository_CreateAppendList(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, "s1", seed())
	if err != nil || !created {
		t.Fatalf("expected created=true,nil; got %v,%v", created, err)
	}
	if err := repo.Append(ctx, "s1", domain.Message{Role: domain.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	msgs, err := repo.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != domain.RoleSystem || msgs[1].Content != "hi" {
		t.Fatalf("unexpected messages %+v", msgs)
	}

	// List devuelve una copia.
	msgs[1].Content = "mutated"
	again, _ := repo.List(ctx, "s1")
	if again[1].Content != "hi" {
		t.Fatalf("expected stored message untouched, got %q", again[1].Content)
	}
}

func TestMemoryConversationRepository_CreateExistingKeepsHistory(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	_, _ = repo.Create(ctx, "s1", seed())
	_ = repo.Append(ctx, "s1", domain.Message{Role: domain.RoleUser, Content: "hi"})

	created, err := repo.Create(ctx, "s1", seed())
	if err != nil || created {
		t.Fatalf("expected created=false,nil; got %v,%v", created, err)
	}
	msgs, _ := repo.List(ctx, "s1")
	if len(msgs) != 2 {
		t.Fatalf("expected history preserved, got %d messages", len(msgs))
	}
}

func TestMemoryConversationRepository_IsolatesSessions(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	_, _ = repo.Create(ctx, "a", seed())
	_, _ = repo.Create(ctx, "b", seed())
	_ = repo.Append(ctx, "a", domain.Message{Role: domain.RoleUser, Content: "from a"})

	b, _ := repo.List(ctx, "b")
	if len(b) != 1 {
		t.Fatalf("expected session b untouched, got %+v", b)
	}
}

func TestMemoryConversationRepository_MissingSession(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	if err := repo.Append(ctx, "missing", domain.Message{}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := repo.List(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete of missing session should be no-op, got %v", err)
	}
}

func TestMemoryConversationRepository_Delete(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	_, _ = repo.Create(ctx, "a", seed())
	_, _ = repo.Create(ctx, "b", seed())
	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.List(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
	if _, err := repo.List(ctx, "b"); err != nil {
		t.Fatalf("expected other session untouched, got %v", err)
	}
}
