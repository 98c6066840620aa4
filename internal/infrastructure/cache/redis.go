// Package cache locks distribuidos e idempotencia de eventos sobre Redis, con equivalentes en memoria
// para un solo proceso.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/jhoicas/Mayorista-api/pkg/config"
)

// NewRedisClient conecta y verifica el servidor con un PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// releaseScript borra la clave solo si aún guarda el token de quien tomó el lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker lock por clave con SET NX + TTL.
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLocker construye el locker. keyPrefix vacío = "lock:".
func NewRedisLocker(client *redis.Client, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &RedisLocker{client: client, keyPrefix: keyPrefix}
}

// TryLock toma el lock si está libre. release lo suelta solo si sigue siendo nuestro.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	k := l.keyPrefix + key
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis: lock %s: %w", k, err)
	}
	if !ok {
		return nil, false, nil
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{k}, token).Err()
	}, true, nil
}

// RedisIdempotencyStore marca eventos procesados con SET NX + TTL.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore construye el store. keyPrefix vacío = "idempotency:".
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "idempotency:"
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed devuelve true si la clave se marcó ahora, false si ya estaba.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: marcar %s: %w", key, err)
	}
	return ok, nil
}

// Forget elimina la marca (el evento podrá procesarse de nuevo).
func (s *RedisIdempotencyStore) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis: olvidar %s: %w", key, err)
	}
	return nil
}
