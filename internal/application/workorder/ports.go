package workorder

import (
	"context"
	"time"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el repositorio de órdenes atado a ella.
// Rechazar calidad escribe dos filas; ambas se confirman o ninguna.
type TxRunner interface {
	RunWorkOrders(ctx context.Context, fn func(woRepo repository.WorkOrderRepository) error) error
}

// RouteSheetRenderer genera la hoja de ruta imprimible de una orden.
type RouteSheetRenderer interface {
	ContentType() string
	RenderRouteSheet(ctx context.Context, wo *dto.WorkOrderResponse, printedAt time.Time) ([]byte, error)
}
