package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/factory-api/internal/application/ports"
	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/pkg/logger"
)

const lockTTL = 10 * time.Second

var _ ports.Locker = (*Locker)(nil)

// Locker bloqueo distribuido con redislock. Claves "lock:<key>".
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewLocker construye el locker sobre un cliente Redis.
func NewLocker(rdb goredis.UniversalClient, log *logger.Logger) *Locker {
	if log == nil {
		log = logger.Nop()
	}
	return &Locker{client: redislock.New(rdb), ttl: lockTTL, log: log.Component("redislock")}
}

// Lock intenta obtener el bloqueo sin esperar. Ocupado → domain.ErrConflict (reintentable).
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	lock, err := l.client.Obtain(ctx, lockKey, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", lockKey, err)
	}
	return func() {
		// Contexto propio: la solicitud pudo haberse cancelado y el bloqueo debe liberarse igual.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", lockKey).Msg("no se pudo liberar el bloqueo")
		}
	}, nil
}
