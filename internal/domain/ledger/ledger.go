// Package ledger contiene la aritmética del libro de stock: cada operación devuelve
// la nueva cantidad del artículo y el movimiento a registrar, sin tocar persistencia.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
)

// Entry cambio a persistir: cantidad resultante del artículo + asiento nuevo.
type Entry struct {
	NewQuantity decimal.Decimal
	Movement    *entity.StockMovement
}

func newMovement(item *entity.StockItem, action string, delta decimal.Decimal, reason, by string, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		StockItemID: item.ID,
		Action:      action,
		Quantity:    delta,
		Reason:      reason,
		PerformedBy: by,
		CreatedAt:   now,
	}
}

// Issue salida de qty unidades. Nunca deja el stock en negativo.
func Issue(item *entity.StockItem, qty decimal.Decimal, reason string, workOrderID *string, by string, now time.Time) (Entry, error) {
	if !qty.IsPositive() {
		return Entry{}, domain.ErrInvalidQuantity
	}
	newQty := item.Quantity.Sub(qty)
	if newQty.IsNegative() {
		return Entry{}, domain.ErrInsufficientQuantity
	}
	mov := newMovement(item, entity.MovementIssue, qty.Neg(), reason, by, now)
	mov.WorkOrderID = workOrderID
	return Entry{NewQuantity: newQty, Movement: mov}, nil
}

// Add entrada de qty unidades.
func Add(item *entity.StockItem, qty decimal.Decimal, reason, by string, now time.Time) (Entry, error) {
	if !qty.IsPositive() {
		return Entry{}, domain.ErrInvalidQuantity
	}
	return Entry{
		NewQuantity: item.Quantity.Add(qty),
		Movement:    newMovement(item, entity.MovementAdd, qty, reason, by, now),
	}, nil
}

// Adjust fija la cantidad absoluta newQty; el asiento lleva el delta con signo.
func Adjust(item *entity.StockItem, newQty decimal.Decimal, reason, by string, now time.Time) (Entry, error) {
	if newQty.IsNegative() {
		return Entry{}, domain.ErrInvalidQuantity
	}
	delta := newQty.Sub(item.Quantity)
	return Entry{
		NewQuantity: newQty,
		Movement:    newMovement(item, entity.MovementAdjust, delta, reason, by, now),
	}, nil
}

// CanReverse solo las salidas no revertidas admiten reversa.
func CanReverse(mov *entity.StockMovement) error {
	if mov.Action != entity.MovementIssue || mov.IsReversed() {
		return domain.ErrNotReversible
	}
	return nil
}

// Reverse compensa una salida con una entrada ADD que la referencia y marca la original.
// mov se modifica en memoria (ReversedAt/By); el llamador persiste ambos.
func Reverse(item *entity.StockItem, mov *entity.StockMovement, by string, now time.Time) (Entry, error) {
	if err := CanReverse(mov); err != nil {
		return Entry{}, err
	}
	if mov.StockItemID != item.ID {
		return Entry{}, domain.ErrInvalidInput
	}
	restored := mov.Quantity.Neg()
	comp := newMovement(item, entity.MovementAdd, restored, "reversa de salida", by, now)
	origID := mov.ID
	comp.ReversalOf = &origID
	comp.WorkOrderID = mov.WorkOrderID

	at := now
	mov.ReversedAt = &at
	mov.ReversedBy = by
	return Entry{NewQuantity: item.Quantity.Add(restored), Movement: comp}, nil
}

// Balance suma de deltas de los movimientos. Con reversas incluidas debe igualar la
// cantidad del artículo.
func Balance(movements []*entity.StockMovement) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range movements {
		sum = sum.Add(m.Quantity)
	}
	return sum
}
