package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockItemRequest alta de un artículo de stock (arranca en cantidad cero).
type CreateStockItemRequest struct {
	Code     string `json:"code" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=200"`
	Group    string `json:"group" validate:"max=100"`
	Location string `json:"location" validate:"max=200"`
}

// IssueStockRequest body para POST /api/stock/items/:id/issue.
type IssueStockRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason" validate:"max=500"`
	WorkOrderID string          `json:"work_order_id,omitempty" validate:"omitempty,uuid"`
}

// AddStockRequest body para POST /api/stock/items/:id/add.
type AddStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason" validate:"max=500"`
}

// AdjustStockRequest body para POST /api/stock/items/:id/adjust (cantidad absoluta).
type AdjustStockRequest struct {
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason" validate:"required,max=500"`
}

// StockItemResponse salida de un artículo.
type StockItemResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Group     string          `json:"group"`
	Location  string          `json:"location"`
	Quantity  decimal.Decimal `json:"quantity"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockItemListResponse lista paginada de artículos.
type StockItemListResponse struct {
	Items []StockItemResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// StockMovementResponse asiento del libro con datos de artículo y orden.
type StockMovementResponse struct {
	ID          string          `json:"id"`
	StockItemID string          `json:"stock_item_id"`
	ItemCode    string          `json:"item_code,omitempty"`
	ItemName    string          `json:"item_name,omitempty"`
	Action      string          `json:"action"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"`
	WorkOrderID *string         `json:"work_order_id,omitempty"`
	WorkOrderNo string          `json:"work_order_no,omitempty"`
	PerformedBy string          `json:"performed_by"`
	CreatedAt   time.Time       `json:"created_at"`
	ReversedAt  *time.Time      `json:"reversed_at,omitempty"`
	ReversedBy  string          `json:"reversed_by,omitempty"`
	ReversalOf  *string         `json:"reversal_of,omitempty"`
}

// StockOperationResponse resultado de una operación del libro: artículo actualizado + asiento.
type StockOperationResponse struct {
	Item     StockItemResponse     `json:"item"`
	Movement StockMovementResponse `json:"movement"`
}

// StockMovementQuery filtros de GET /api/stock/movements.
type StockMovementQuery struct {
	StockItemID string `query:"stock_item_id" validate:"omitempty,uuid"`
	WorkOrderID string `query:"work_order_id" validate:"omitempty,uuid"`
	Action      string `query:"action" validate:"omitempty,oneof=ISSUE ADD ADJUST"`
	From        string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}
