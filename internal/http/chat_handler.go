package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tutor-llm/internal/domain"
	"tutor-llm/internal/service"
)

// ChatHandler atiende la página de chat y la conexión WebSocket de cada cliente.
type ChatHandler struct {
	logger   *zap.Logger
	chat     *service.ChatService
	upgrader websocket.Upgrader
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		logger: logger,
		chat:   chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ChatPage maneja GET /. La conversación nace con el WebSocket, así que la página llega vacía.
func (h *ChatHandler) ChatPage(c *gin.Context) {
	c.HTML(http.StatusOK, "chat.html", nil)
}

// Stream maneja GET /ws: saludo, y luego un turno por cada mensaje de texto recibido.
// Cada conexión tiene su propia sesión, creada al conectar y descartada al cerrar.
func (h *ChatHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// El upgrader ya respondió con el error HTTP.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sid := uuid.NewString()
	ctx := c.Request.Context()
	logger := h.logger.With(zap.String("session_id", sid))

	if _, err := h.chat.StartSession(ctx, sid); err != nil {
		logger.Error("start chat session failed", zap.Error(err))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session unavailable"))
		return
	}
	defer func() {
		if err := h.chat.EndSession(context.WithoutCancel(ctx), sid); err != nil {
			logger.Warn("end chat session failed", zap.Error(err))
		}
	}()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(domain.Greeting)); err != nil {
		logger.Info("client disconnected", zap.Error(err))
		return
	}

	send := func(fragment string) error {
		return conn.WriteMessage(websocket.TextMessage, []byte(fragment))
	}

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if isDisconnect(err) {
				logger.Info("client disconnected")
			} else {
				logger.Warn("websocket receive failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		_, err = h.chat.Turn(ctx, sid, string(payload), send)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrClientGone):
			logger.Info("client disconnected mid-stream", zap.Error(err))
			return
		default:
			// El turno queda sin respuesta; la sesión sigue abierta.
			logger.Warn("chat turn failed", zap.Error(err))
		}
	}
}

// isDisconnect reporta si el error de lectura es un cierre del cliente (limpio o abrupto).
func isDisconnect(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr)
}
