package lifecycle

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
)

// checkQualityReady la inspección requiere producción terminada, orden viva y sin re-planificación pendiente.
func checkQualityReady(wo *entity.WorkOrder) error {
	if wo.IsTerminal() {
		return domain.ErrConflict
	}
	if !wo.ProductionCompleted.Done() || wo.ReplanRequired {
		return domain.ErrStageLocked
	}
	return nil
}

// AcceptQuality registra la aceptación de calidad. Con partialQty la aceptación es parcial
// y solo se anota la cantidad; no se crea otra orden.
func AcceptQuality(wo *entity.WorkOrder, by, note string, partialQty *decimal.Decimal, now time.Time) error {
	if err := checkQualityReady(wo); err != nil {
		return err
	}
	if wo.QualityAcceptedAt != nil {
		return domain.ErrConflict
	}
	outcome := entity.QualityAccepted
	if partialQty != nil {
		if !partialQty.IsPositive() || partialQty.GreaterThanOrEqual(wo.Quantity) {
			return domain.ErrInvalidQuantity
		}
		q := *partialQty
		wo.QualityPartialQty = &q
		outcome = entity.QualityPartiallyAccepted
	}
	at := now
	wo.QualityAcceptedAt = &at
	wo.QualityAcceptedBy = by
	wo.QualityNote = note
	wo.QualityOutcome = outcome
	wo.Status = DeriveStatus(wo)
	return nil
}

// RejectQuality separa la cantidad rechazada en una nueva orden "<no>_r" que vuelve a
// planificación. Si queda cantidad, la original se reduce y pasa a re-planificación;
// si no, queda rechazada con su cantidad intacta. Devuelve la orden nueva sin ID.
func RejectQuality(wo *entity.WorkOrder, by, note string, rejectedQty *decimal.Decimal, now time.Time) (*entity.WorkOrder, error) {
	if err := checkQualityReady(wo); err != nil {
		return nil, err
	}
	if wo.QualityOutcome == entity.QualityAccepted {
		return nil, domain.ErrConflict
	}
	qty := wo.Quantity
	if rejectedQty != nil {
		qty = *rejectedQty
	}
	if !qty.IsPositive() || qty.GreaterThan(wo.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	remaining := wo.Quantity.Sub(qty)

	at := now
	wo.QualityRejectedAt = &at
	wo.QualityRejectedBy = by
	wo.QualityNote = note
	wo.RejectedQty = &qty
	if remaining.IsPositive() {
		wo.Quantity = remaining
		wo.ReplanRequired = true
		wo.QualityOutcome = entity.QualityPartiallyRejected
		// La aceptación parcial previa ya no describe la cantidad restante.
		wo.QualityAcceptedAt = nil
		wo.QualityAcceptedBy = ""
		wo.QualityPartialQty = nil
	} else {
		wo.QualityOutcome = entity.QualityRejected
	}
	wo.Status = DeriveStatus(wo)

	spawned := &entity.WorkOrder{
		WorkOrderNo:     wo.WorkOrderNo + entity.RejectSuffix,
		ToolRef:         wo.ToolRef,
		Quantity:        qty,
		Korv:            wo.Korv,
		MarkingRequired: wo.MarkingRequired,
		CoatingRequired: wo.CoatingRequired,
		ParentID:        wo.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	spawned.Status = DeriveStatus(spawned)
	return spawned, nil
}
