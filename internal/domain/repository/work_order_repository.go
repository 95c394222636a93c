package repository

import (
	"context"

	"github.com/jhoicas/factory-api/internal/domain/entity"
)

// WorkOrderRepository define el puerto de persistencia para órdenes de trabajo.
// Update aplica compare-and-swap sobre Version: si la fila cambió devuelve domain.ErrVersionConflict.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *entity.WorkOrder) error
	GetByID(ctx context.Context, id string) (*entity.WorkOrder, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error)
	Update(ctx context.Context, wo *entity.WorkOrder) error
	ExistsNo(ctx context.Context, workOrderNo string) (bool, error)
	List(ctx context.Context, filter entity.WorkOrderFilter) ([]*entity.WorkOrder, error)
}
