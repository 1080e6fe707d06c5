package session

import (
	"fmt"

	"github.com/shopbot/backend/internal/domain/conversation"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory creates session stores based on configuration
type StoreFactory struct {
	sessionConfig config.SessionConfig
	redisConfig   config.RedisConfig
	logger        *zap.Logger
	allowFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(sessionCfg config.SessionConfig, redisCfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		sessionConfig: sessionCfg,
		redisConfig:   redisCfg,
		logger:        zap.NewNop(),
		allowFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates the session store the configuration asks for. With the
// redis backend it tries Redis first and falls back to in-memory when Redis
// is unavailable and fallback is allowed. A dropped in-memory session only
// costs the admin a restarted wizard, so the fallback is safe.
func (f *StoreFactory) CreateStore() (conversation.Store, error) {
	switch f.sessionConfig.Backend {
	case "memory", "":
		f.logger.Info("using in-memory session store")
		return NewInMemorySessionStore(f.sessionConfig.TTL), nil

	case "redis":
		store, err := NewRedisSessionStore(f.redisConfig, f.sessionConfig.TTL)
		if err == nil {
			f.logger.Info("using Redis session store")
			return store, nil
		}

		if !f.allowFallback {
			return nil, fmt.Errorf("Redis required for sessions but unavailable: %w", err)
		}

		f.logger.Warn("Redis unavailable, falling back to in-memory session store. "+
			"In-progress wizards will not survive a process restart.",
			zap.Error(err),
		)
		return NewInMemorySessionStore(f.sessionConfig.TTL), nil

	default:
		return nil, fmt.Errorf("unsupported session backend %q", f.sessionConfig.Backend)
	}
}
