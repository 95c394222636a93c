package ports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factory-api/internal/application/ports"
	"github.com/jhoicas/factory-api/internal/domain"
)

type scriptedGuard struct {
	claimed    map[string]bool
	releaseErr error
	released   []string
}

func (g *scriptedGuard) Claim(_ context.Context, key string) (bool, error) {
	if g.claimed[key] {
		return false, nil
	}
	g.claimed[key] = true
	return true, nil
}

func (g *scriptedGuard) Release(_ context.Context, key string) error {
	g.released = append(g.released, key)
	if g.releaseErr != nil {
		return g.releaseErr
	}
	delete(g.claimed, key)
	return nil
}

func newGuard() *scriptedGuard { return &scriptedGuard{claimed: map[string]bool{}} }

func TestOnce_SinClaveSiempreEjecuta(t *testing.T) {
	g := newGuard()
	calls := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, ports.Once(context.Background(), g, "", func() error { calls++; return nil }))
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, g.claimed)
}

func TestOnce_ClaveRepetida(t *testing.T) {
	g := newGuard()
	calls := 0
	fn := func() error { calls++; return nil }

	require.NoError(t, ports.Once(context.Background(), g, "k", fn))
	err := ports.Once(context.Background(), g, "k", fn)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	assert.Equal(t, 1, calls)
}

func TestOnce_FalloLiberaClave(t *testing.T) {
	g := newGuard()
	err := ports.Once(context.Background(), g, "k", func() error { return domain.ErrInsufficientQuantity })
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.Equal(t, []string{"k"}, g.released)

	assert.NoError(t, ports.Once(context.Background(), g, "k", func() error { return nil }))
}

func TestOnce_ErrorAlLiberarSeDevuelve(t *testing.T) {
	g := newGuard()
	down := errors.New("redis caído")
	g.releaseErr = down

	err := ports.Once(context.Background(), g, "k", func() error { return domain.ErrStageLocked })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStageLocked, "el error de la operación se conserva")
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "idempotency release k")
}
