package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"tutor-llm/internal/domain"
	"tutor-llm/internal/llm"
	"tutor-llm/internal/repository"
)

var (
	ErrChatServiceNotConfigured = errors.New("chat service not configured")
	ErrUpstreamUnavailable      = errors.New("upstream unavailable")
	ErrClientGone               = errors.New("client gone")
)

// Sender entrega un fragmento de texto al cliente conectado.
type Sender func(fragment string) error

// ChatSettings fija el modelo y la temperatura de cada turno.
type ChatSettings struct {
	Model       string
	Temperature float64
}

// TurnResult describe un turno completado (o cortado) de la conversación.
type TurnResult struct {
	UserMessage      domain.Message
	AssistantMessage domain.Message
	Fragments        int
}

// ChatService orquesta los turnos de chat: guarda el mensaje del usuario, hace stream
// del modelo hacia el cliente y persiste la respuesta completa al final.
type ChatService struct {
	llmClient llm.LLMClient
	repo      repository.ConversationRepository
	settings  ChatSettings
	logger    *zap.Logger
	turns     metric.Int64Counter
}

func NewChatService(
	llmClient llm.LLMClient,
	repo repository.ConversationRepository,
	settings ChatSettings,
	logger *zap.Logger,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	turns, err := otel.Meter("tutor-llm/service").Int64Counter("chat.turns",
		metric.WithDescription("Completed chat turns by outcome"))
	if err != nil {
		turns = noop.Int64Counter{}
	}
	return &ChatService{
		llmClient: llmClient,
		repo:      repo,
		settings:  settings,
		logger:    logger,
		turns:     turns,
	}
}

// StartSession asegura que exista una conversación para la sesión, sembrada con la persona del tutor.
func (s *ChatService) StartSession(ctx context.Context, sessionID string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, ErrChatServiceNotConfigured
	}
	seed := []domain.Message{newMessage(domain.RoleSystem, domain.TutorPersona)}
	created, err := s.repo.Create(ctx, sessionID, seed)
	if err != nil {
		return false, fmt.Errorf("create conversation: %w", err)
	}
	return created, nil
}

// EndSession descarta la conversación al desconectarse el cliente.
func (s *ChatService) EndSession(ctx context.Context, sessionID string) error {
	if s == nil || s.repo == nil {
		return ErrChatServiceNotConfigured
	}
	return s.repo.Delete(ctx, sessionID)
}

// Conversation devuelve la conversación completa, incluido el mensaje de sistema.
func (s *ChatService) Conversation(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if s == nil || s.repo == nil {
		return nil, ErrChatServiceNotConfigured
	}
	return s.repo.List(ctx, sessionID)
}

// Turn procesa un mensaje del usuario. Los fragmentos vacíos no se envían ni se acumulan.
// La respuesta del asistente se agrega siempre al final, aunque el stream falle,
// para que cada mensaje de usuario quede seguido de exactamente uno del asistente.
func (s *ChatService) Turn(ctx context.Context, sessionID, userText string, send Sender) (TurnResult, error) {
	if s == nil || s.repo == nil || s.llmClient == nil {
		return TurnResult{}, ErrChatServiceNotConfigured
	}

	var result TurnResult
	result.UserMessage = newMessage(domain.RoleUser, userText)
	if err := s.repo.Append(ctx, sessionID, result.UserMessage); err != nil {
		return result, fmt.Errorf("append user message: %w", err)
	}

	history, err := s.repo.List(ctx, sessionID)
	if err != nil {
		result.AssistantMessage = s.appendEmptyReply(ctx, sessionID)
		return result, fmt.Errorf("list conversation: %w", err)
	}

	req := llm.ChatRequest{
		Model:       s.settings.Model,
		Temperature: s.settings.Temperature,
		Messages:    toLLMMessages(history),
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reply strings.Builder
	streamErr := s.llmClient.StreamChat(streamCtx, req, func(fragment string) error {
		if fragment == "" {
			return nil
		}
		if err := send(fragment); err != nil {
			cancel()
			return fmt.Errorf("%w: %w", ErrClientGone, err)
		}
		reply.WriteString(fragment)
		result.Fragments++
		return nil
	})

	result.AssistantMessage = newMessage(domain.RoleAssistant, reply.String())
	if err := s.repo.Append(context.WithoutCancel(ctx), sessionID, result.AssistantMessage); err != nil {
		s.logger.Error("append assistant message failed", zap.Error(err), zap.String("session_id", sessionID))
		if streamErr == nil {
			return result, fmt.Errorf("append assistant message: %w", err)
		}
	}

	switch {
	case streamErr == nil:
		s.recordTurn(ctx, "ok")
		return result, nil
	case errors.Is(streamErr, ErrClientGone):
		s.recordTurn(ctx, "client_gone")
		return result, streamErr
	default:
		s.recordTurn(ctx, "upstream_error")
		return result, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, streamErr)
	}
}

// appendEmptyReply cierra con una respuesta vacía un turno cortado antes del stream.
func (s *ChatService) appendEmptyReply(ctx context.Context, sessionID string) domain.Message {
	msg := newMessage(domain.RoleAssistant, "")
	if err := s.repo.Append(context.WithoutCancel(ctx), sessionID, msg); err != nil {
		s.logger.Error("append assistant message failed", zap.Error(err), zap.String("session_id", sessionID))
	}
	return msg
}

func (s *ChatService) recordTurn(ctx context.Context, outcome string) {
	s.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func newMessage(role domain.Role, content string) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func toLLMMessages(history []domain.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
