package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopbot/backend/internal/domain/conversation"
	"github.com/shopbot/backend/internal/infrastructure/config"
)

const defaultKeyPrefix = "session:"

// RedisSessionStore implements conversation.Store on Redis. This is for
// deployments where the bot process may restart mid-wizard: the admin's
// half-entered product survives the restart.
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionStore connects to Redis and verifies the connection
func NewRedisSessionStore(cfg config.RedisConfig, ttl time.Duration) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSessionStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       ttl,
	}, nil
}

// NewRedisSessionStoreWithClient creates a store with an existing Redis
// client. This is useful for testing or when sharing a client across
// components.
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the live session for a user, or conversation.ErrNoSession
func (s *RedisSessionStore) Get(ctx context.Context, userID int64) (conversation.Session, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, conversation.ErrNoSession
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return conversation.Unmarshal(data)
}

// Put stores the session for a user, replacing any previous one. The key
// TTL resets on every write, so an active wizard never expires mid-step.
func (s *RedisSessionStore) Put(ctx context.Context, userID int64, session conversation.Session) error {
	data, err := conversation.Marshal(session)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Clear removes the session for a user
func (s *RedisSessionStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisSessionStore) GetClient() *redis.Client {
	return s.client
}

func (s *RedisSessionStore) key(userID int64) string {
	return s.keyPrefix + strconv.FormatInt(userID, 10)
}

// Ensure RedisSessionStore implements conversation.Store
var _ conversation.Store = (*RedisSessionStore)(nil)
