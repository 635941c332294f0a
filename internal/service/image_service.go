package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"tutor-llm/internal/llm"
)

// ImageErrorMessage es el texto que ve el usuario cuando falla la generación.
const ImageErrorMessage = "An error occurred. Please try a different prompt or check the OpenRouter model's response format."

var ErrImageUnavailable = errors.New("image generation unavailable")

type ImageSettings struct {
	Model string
	Size  string
}

// ImageService genera una imagen por prompt, sin estado entre llamadas.
type ImageService struct {
	llmClient llm.LLMClient
	settings  ImageSettings
	logger    *zap.Logger
	requests  metric.Int64Counter
}

func NewImageService(llmClient llm.LLMClient, settings ImageSettings, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	requests, err := otel.Meter("tutor-llm/service").Int64Counter("image.requests",
		metric.WithDescription("Image generation requests by outcome"))
	if err != nil {
		requests = noop.Int64Counter{}
	}
	return &ImageService{
		llmClient: llmClient,
		settings:  settings,
		logger:    logger,
		requests:  requests,
	}
}

// Generate pide exactamente una imagen. El prompt no se valida.
func (s *ImageService) Generate(ctx context.Context, prompt string) (string, error) {
	if s == nil || s.llmClient == nil {
		return "", fmt.Errorf("%w: service not configured", ErrImageUnavailable)
	}

	url, err := s.llmClient.GenerateImage(ctx, llm.ImageRequest{
		Model:  s.settings.Model,
		Prompt: prompt,
		N:      1,
		Size:   s.settings.Size,
	})
	if err == nil && url == "" {
		err = llm.ErrEmptyImageURL
	}
	if err != nil {
		s.logger.Warn("image generation failed", zap.Error(err))
		s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		return "", fmt.Errorf("%w: %w", ErrImageUnavailable, err)
	}

	s.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	return url, nil
}
