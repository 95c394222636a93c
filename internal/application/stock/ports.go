package stock

import (
	"context"
	"io"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que cantidad del artículo y asiento del libro se escriban juntos.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		movRepo repository.StockMovementRepository,
		woRepo repository.WorkOrderRepository,
	) error) error
}

// MovementExporter escribe el listado de movimientos en un formato descargable (xlsx).
type MovementExporter interface {
	ContentType() string
	WriteMovements(w io.Writer, rows []dto.StockMovementResponse) error
}
