package repository

import (
	"context"
	"errors"
	"sync"

	"tutor-llm/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// ConversationRepository guarda la conversación de cada sesión, en orden de inserción.
type ConversationRepository interface {
	// Create inicializa la sesión con los mensajes dados si todavía no existe.
	// Devuelve false si ya existía (en ese caso no modifica nada).
	Create(ctx context.Context, sessionID string, seed []domain.Message) (bool, error)
	Append(ctx context.Context, sessionID string, msg domain.Message) error
	List(ctx context.Context, sessionID string) ([]domain.Message, error)
	// Delete descarta la conversación; borrar una sesión inexistente no es error.
	Delete(ctx context.Context, sessionID string) error
}

// MemoryConversationRepository mantiene las conversaciones en el proceso.
type MemoryConversationRepository struct {
	mu    sync.Mutex
	items map[string][]domain.Message
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{
		items: make(map[string][]domain.Message),
	}
}

func (r *MemoryConversationRepository) Create(_ context.Context, sessionID string, seed []domain.Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[sessionID]; ok {
		return false, nil
	}
	r.items[sessionID] = append([]domain.Message(nil), seed...)
	return true, nil
}

func (r *MemoryConversationRepository) Append(_ context.Context, sessionID string, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages, ok := r.items[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	r.items[sessionID] = append(messages, msg)
	return nil
}

func (r *MemoryConversationRepository) List(_ context.Context, sessionID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages, ok := r.items[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return append([]domain.Message(nil), messages...), nil
}

func (r *MemoryConversationRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, sessionID)
	return nil
}
