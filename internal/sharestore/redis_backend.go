package sharestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"greeting-cards/pkg/models"
)

// keyPrefix namespaces share records in a shared Redis database.
const keyPrefix = "share:"

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Addresses    []string      `mapstructure:"addresses"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultRedisConfig returns the default connection settings.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addresses:    []string{"localhost:6379"},
		Password:     "",
		Database:     0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisBackend stores share records in Redis, one key per record. Records
// are written with a Redis TTL matching their expiry so the server drops
// them on its own; the store's reconciler still applies expiry on top, so
// clock skew between processes cannot resurrect an expired card.
type RedisBackend struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(config *RedisConfig, logger *zap.Logger) (*RedisBackend, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        config.Addresses,
		Password:     config.Password,
		DB:           config.Database,
		MaxRetries:   config.MaxRetries,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBackend{client: client, logger: logger}, nil
}

func (rb *RedisBackend) Write(ctx context.Context, card *models.SharedCard) error {
	rec := storedRecord{
		Data:      card.Payload,
		CreatedAt: card.CreatedAt.Unix(),
		ExpiresAt: card.ExpiresAt.Unix(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal shared card: %w", err)
	}

	ttl := time.Until(card.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := rb.client.Set(ctx, keyPrefix+card.ID, data, ttl).Err(); err != nil {
		rb.logger.Error("failed to write shared card", zap.Error(err), zap.String("id", card.ID))
		return fmt.Errorf("failed to write shared card: %w", err)
	}
	return nil
}

func (rb *RedisBackend) Read(ctx context.Context, id string) (*models.SharedCard, error) {
	data, err := rb.client.Get(ctx, keyPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		rb.logger.Error("failed to read shared card", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to read shared card: %w", err)
	}

	var rec storedRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		rb.logger.Error("failed to unmarshal shared card", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to unmarshal shared card: %w", err)
	}
	return rec.toCard(id), nil
}

func (rb *RedisBackend) Delete(ctx context.Context, id string) error {
	if err := rb.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		rb.logger.Error("failed to delete shared card", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete shared card: %w", err)
	}
	return nil
}

func (rb *RedisBackend) All(ctx context.Context) (map[string]*models.SharedCard, error) {
	keys, err := rb.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list shared cards: %w", err)
	}
	cards := make(map[string]*models.SharedCard, len(keys))
	if len(keys) == 0 {
		return cards, nil
	}

	results, err := rb.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shared cards: %w", err)
	}
	for i, result := range results {
		if result == nil {
			continue // deleted between KEYS and MGET
		}
		data, ok := result.(string)
		if !ok {
			rb.logger.Warn("unexpected data type in Redis", zap.String("key", keys[i]))
			continue
		}
		var rec storedRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			rb.logger.Error("failed to unmarshal shared card", zap.Error(err), zap.String("key", keys[i]))
			continue
		}
		id := strings.TrimPrefix(keys[i], keyPrefix)
		cards[id] = rec.toCard(id)
	}
	return cards, nil
}

func (rb *RedisBackend) Close() error {
	if err := rb.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}
