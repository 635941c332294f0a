package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Chunks    []string
	StreamErr error
	ImageURL  string
	ImageErr  error

	// BeforeChunk se invoca antes de entregar el fragmento i, útil para sincronizar tests.
	BeforeChunk func(i int)

	mu           sync.Mutex
	ChatRequests []ChatRequest
	ImageCalls   []ImageRequest
}

func (m *MockClient) StreamChat(ctx context.Context, req ChatRequest, onChunk ChunkHandler) error {
	m.mu.Lock()
	copied := req
	copied.Messages = append([]Message(nil), req.Messages...)
	m.ChatRequests = append(m.ChatRequests, copied)
	m.mu.Unlock()

	for i, c := range m.Chunks {
		if m.BeforeChunk != nil {
			m.BeforeChunk(i)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if onChunk != nil {
			if err := onChunk(c); err != nil {
				return err
			}
		}
	}
	return m.StreamErr
}

func (m *MockClient) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	m.mu.Lock()
	m.ImageCalls = append(m.ImageCalls, req)
	m.mu.Unlock()
	return m.ImageURL, m.ImageErr
}

// LastChatRequest devuelve la última petición de chat recibida.
func (m *MockClient) LastChatRequest() (ChatRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ChatRequests) == 0 {
		return ChatRequest{}, false
	}
	return m.ChatRequests[len(m.ChatRequests)-1], true
}
