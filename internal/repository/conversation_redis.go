package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tutor-llm/internal/domain"
)

// Crea la lista solo si no existe.
const redisCreateConversationScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("RPUSH", KEYS[1], unpack(ARGV))
return 1
`

type redisConversationClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	RPushX(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisConversationRepository guarda cada conversación como una lista de mensajes JSON.
type RedisConversationRepository struct {
	client  redisConversationClient
	prefix  string
	timeout time.Duration
}

func NewRedisConversationRepository(client *redis.Client) *RedisConversationRepository {
	if client == nil {
		return nil
	}
	return &RedisConversationRepository{
		client:  client,
		prefix:  "tutor:conv:",
		timeout: 500 * time.Millisecond,
	}
}

func (r *RedisConversationRepository) Create(ctx context.Context, sessionID string, seed []domain.Message) (bool, error) {
	if len(seed) == 0 {
		return false, fmt.Errorf("create conversation: empty seed")
	}
	args := make([]interface{}, 0, len(seed))
	for _, m := range seed {
		raw, err := json.Marshal(m)
		if err != nil {
			return false, fmt.Errorf("marshal message: %w", err)
		}
		args = append(args, string(raw))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	created, err := r.client.Eval(ctx, redisCreateConversationScript, []string{r.key(sessionID)}, args...).Int()
	if err != nil {
		return false, fmt.Errorf("create conversation: %w", err)
	}
	return created == 1, nil
}

func (r *RedisConversationRepository) Append(ctx context.Context, sessionID string, msg domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.client.RPushX(ctx, r.key(sessionID), string(raw)).Result()
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *RedisConversationRepository) List(ctx context.Context, sessionID string) ([]domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	items, err := r.client.LRange(ctx, r.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	// Toda conversación tiene al menos el mensaje de sistema.
	if len(items) == 0 {
		return nil, ErrSessionNotFound
	}

	messages := make([]domain.Message, 0, len(items))
	for _, item := range items {
		var m domain.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *RedisConversationRepository) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

func (r *RedisConversationRepository) key(sessionID string) string {
	return r.prefix + sessionID
}
