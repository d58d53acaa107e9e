package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ByLCY/pricetag/product"
)

const defaultKeyPrefix = "pricetag:session:"

// kv is the subset of redis.Cmdable used by RedisStore.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisStore keeps each session's list as one JSON value with a sliding TTL,
// so instances behind a load balancer share the scratchpad.
type RedisStore struct {
	client    kv
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisStore connects and pings Redis.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.TTL, logger), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client kv, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl, logger: logger}
}

func (s *RedisStore) List(ctx context.Context, sid string) ([]product.Product, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sid, err)
	}
	var list []product.Product
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Warn("discarding unreadable session", zap.String("sid", sid), zap.Error(err))
		return nil, nil
	}
	return list, nil
}

func (s *RedisStore) save(ctx context.Context, sid string, list []product.Product) error {
	if len(list) == 0 {
		return s.Clear(ctx, sid)
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sid, err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+sid, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sid, err)
	}
	return nil
}

func (s *RedisStore) Add(ctx context.Context, sid string, p product.Product) (product.Product, error) {
	list, err := s.List(ctx, sid)
	if err != nil {
		return product.Product{}, err
	}
	p = prepare(p)
	if err := s.save(ctx, sid, append(list, p)); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (s *RedisStore) Remove(ctx context.Context, sid, id string) error {
	list, err := s.List(ctx, sid)
	if err != nil {
		return err
	}
	list, err = removeByID(list, id)
	if err != nil {
		return err
	}
	return s.save(ctx, sid, list)
}

func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.keyPrefix+sid).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", sid, err)
	}
	return nil
}
