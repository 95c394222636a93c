package stock

import (
	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/domain/entity"
)

func toStockItemResponse(it *entity.StockItem) dto.StockItemResponse {
	return dto.StockItemResponse{
		ID:        it.ID,
		Code:      it.Code,
		Name:      it.Name,
		Group:     it.Group,
		Location:  it.Location,
		Quantity:  it.Quantity,
		Version:   it.Version,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:          m.ID,
		StockItemID: m.StockItemID,
		Action:      m.Action,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		WorkOrderID: m.WorkOrderID,
		PerformedBy: m.PerformedBy,
		CreatedAt:   m.CreatedAt,
		ReversedAt:  m.ReversedAt,
		ReversedBy:  m.ReversedBy,
		ReversalOf:  m.ReversalOf,
	}
}

func toMovementViewResponse(v *entity.StockMovementView) dto.StockMovementResponse {
	out := toMovementResponse(&v.StockMovement)
	out.ItemCode = v.ItemCode
	out.ItemName = v.ItemName
	out.WorkOrderNo = v.WorkOrderNo
	return out
}
