package repository

import (
	"context"

	"github.com/jhoicas/factory-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de movimientos (solo inserción;
// MarkReversed es la única actualización permitida).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error)
	// MarkReversed marca la reversa solo si el movimiento no estaba revertido;
	// devuelve domain.ErrNotReversible si otra transacción se adelantó.
	MarkReversed(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter entity.StockMovementFilter) ([]*entity.StockMovementView, error)
	ListByItem(ctx context.Context, stockItemID string) ([]*entity.StockMovement, error)
}
