package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrUpstreamStatus = errors.New("llm upstream http error")
	ErrUpstreamAPI    = errors.New("llm upstream api error")
	ErrEmptyImageURL  = errors.New("no image url found in the api response")
)

// ChunkHandler recibe cada fragmento del stream en orden de llegada.
// Si devuelve error el stream se corta y el error se propaga.
type ChunkHandler func(fragment string) error

// LLMClient define la interfaz contra la API de modelos.
type LLMClient interface {
	StreamChat(ctx context.Context, req ChatRequest, onChunk ChunkHandler) error
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
}

type ImageRequest struct {
	Model  string
	Prompt string
	N      int
	Size   string
}

// Options agrupa la configuración del cliente HTTP.
type Options struct {
	BaseURL string
	APIKey  string
	Referer string
	Title   string
	Timeout time.Duration
}

// HTTPClient implementa LLMClient usando una API OpenAI-compatible (OpenRouter).
type HTTPClient struct {
	baseURL string
	apiKey  string
	referer string
	title   string
	client  *http.Client
	stream  *http.Client
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewHTTPClient construye un cliente apuntando a chat completions e image generations.
func NewHTTPClient(opts Options, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openrouter.ai/api/v1"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		referer: opts.Referer,
		title:   opts.Title,
		client:  &http.Client{Timeout: opts.Timeout},
		// Sin timeout: el stream dura lo que tarde el modelo, lo corta el contexto.
		stream: &http.Client{},
		logger: logger,
		tracer: otel.Tracer("tutor-llm/llm"),
	}
}

func (c *HTTPClient) StreamChat(ctx context.Context, req ChatRequest, onChunk ChunkHandler) (err error) {
	ctx, span := c.tracer.Start(ctx, "llm.StreamChat", trace.WithAttributes(
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.messages", len(req.Messages)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		Stream:      true,
	}

	resp, err := c.post(ctx, c.stream, "/chat/completions", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	return parseStream(resp.Body, onChunk)
}

func (c *HTTPClient) GenerateImage(ctx context.Context, req ImageRequest) (url string, err error) {
	ctx, span := c.tracer.Start(ctx, "llm.GenerateImage", trace.WithAttributes(
		attribute.String("llm.model", req.Model),
		attribute.String("llm.image_size", req.Size),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body := imageRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		N:      req.N,
		Size:   req.Size,
	}

	resp, err := c.post(ctx, c.client, "/images/generations", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return "", err
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var ir imageResponse
	if err := json.Unmarshal(respBody, &ir); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if ir.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrUpstreamAPI, ir.Error.Message)
	}
	if len(ir.Data) == 0 || ir.Data[0].URL == "" {
		return "", ErrEmptyImageURL
	}

	return ir.Data[0].URL, nil
}

func (c *HTTPClient) post(ctx context.Context, client *http.Client, path string, payload any) (*http.Response, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

func (c *HTTPClient) checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.logger.Warn("llm error status",
		zap.Int("status", resp.StatusCode),
		zap.String("body", string(respBody)),
	)
	return fmt.Errorf("%w: status=%d", ErrUpstreamStatus, resp.StatusCode)
}

// parseStream lee el cuerpo SSE ("data: {json}") hasta "[DONE]" o EOF.
func parseStream(body io.Reader, onChunk ChunkHandler) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Lineas vacias separan eventos; las que empiezan con ':' son keep-alive.
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("unmarshal chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("%w: %s", ErrUpstreamAPI, chunk.Error.Message)
		}

		var fragment string
		if len(chunk.Choices) > 0 {
			fragment = chunk.Choices[0].Delta.Content
		}
		if onChunk != nil {
			if err := onChunk(fragment); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read error: %w", err)
	}
	return nil
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type apiError struct {
	Message string `json:"message"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}
