package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/factory-api/internal/domain"
)

// Locker puerto de bloqueo distribuido por clave. La implementación con Redis serializa
// operaciones sobre la misma orden entre varias instancias de la API.
// Si no se obtiene el bloqueo debe devolver domain.ErrConflict (reintentable).
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// IdempotencyGuard puerto para claves de idempotencia ("Idempotency-Key").
// Claim devuelve false si la clave ya fue reclamada; Release la libera cuando la
// operación falló y puede reintentarse.
type IdempotencyGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// NoopLocker no bloquea (instancia única o sin Redis).
type NoopLocker struct{}

// Lock implementa Locker.
func (NoopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// NoopGuard acepta todas las claves (sin Redis).
type NoopGuard struct{}

// Claim implementa IdempotencyGuard.
func (NoopGuard) Claim(context.Context, string) (bool, error) { return true, nil }

// Release implementa IdempotencyGuard.
func (NoopGuard) Release(context.Context, string) error { return nil }

// Once ejecuta fn a lo sumo una vez con éxito por clave. Clave vacía = sin control.
// Si fn falla la clave se libera para permitir el reintento; un fallo al liberar se
// devuelve junto al error de fn.
func Once(ctx context.Context, g IdempotencyGuard, key string, fn func() error) error {
	if key == "" {
		return fn()
	}
	ok, err := g.Claim(ctx, key)
	if err != nil {
		return fmt.Errorf("idempotency claim: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateRequest
	}
	if err := fn(); err != nil {
		// Sin liberar, el reintento recibiría DuplicateRequest hasta que expire la clave.
		if relErr := g.Release(ctx, key); relErr != nil {
			return errors.Join(err, fmt.Errorf("idempotency release %s: %w", key, relErr))
		}
		return err
	}
	return nil
}
