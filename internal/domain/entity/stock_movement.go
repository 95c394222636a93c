package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acciones del libro de stock.
const (
	MovementIssue  = "ISSUE"  // salida (p. ej. consumo de una orden de trabajo)
	MovementAdd    = "ADD"    // entrada o compensación de una reversa
	MovementAdjust = "ADJUST" // ajuste a cantidad absoluta (conteo físico)
)

// StockMovement asiento inmutable del libro de stock. Quantity es el delta con signo.
// Solo los campos de reversa (ReversedAt, ReversedBy) se actualizan después de creado.
type StockMovement struct {
	ID          string
	StockItemID string
	Action      string
	Quantity    decimal.Decimal
	Reason      string
	WorkOrderID *string
	PerformedBy string
	CreatedAt   time.Time
	ReversedAt  *time.Time
	ReversedBy  string
	ReversalOf  *string
}

// IsReversed indica si el movimiento ya fue revertido.
func (m *StockMovement) IsReversed() bool {
	return m.ReversedAt != nil
}

// StockMovementView proyección del listado: movimiento con datos de artículo y orden.
type StockMovementView struct {
	StockMovement
	ItemCode    string
	ItemName    string
	WorkOrderNo string
}

// StockMovementFilter filtros del listado de movimientos (todos opcionales).
type StockMovementFilter struct {
	StockItemID string
	WorkOrderID string
	Action      string
	From        *time.Time
	To          *time.Time
	Limit       int
}
