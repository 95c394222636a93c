package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/factory-api/internal/application/ports"
)

const idempotencyKeyTTL = 24 * time.Hour

var _ ports.IdempotencyGuard = (*IdempotencyGuard)(nil)

// IdempotencyGuard reclama claves con SETNX; la primera solicitud gana durante 24h.
type IdempotencyGuard struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyGuard construye el guard sobre un cliente Redis.
func NewIdempotencyGuard(client goredis.Cmdable) *IdempotencyGuard {
	return &IdempotencyGuard{client: client, ttl: idempotencyKeyTTL}
}

// Claim devuelve false si otra solicitud ya reclamó la clave.
func (g *IdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

// Release borra la clave para permitir reintentar una operación fallida.
func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}
