package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Tablero de planta: órdenes por estado, movimientos del día y consumo del mes.
type DashboardSummaryDTO struct {
	// Órdenes por estado visible; incluye los estados en cero.
	WorkOrdersByStatus map[string]int `json:"work_orders_by_status"`
	OpenWorkOrders     int            `json:"open_work_orders"` // sin despachar ni rechazar

	Today MovementTotalsDTO `json:"today"` // 00:00 – 23:59
	Month MovementTotalsDTO `json:"month"` // día 1 – hoy

	// Top 5 artículos por unidades consumidas en el mes
	TopIssuedItems []TopItemDTO `json:"top_issued_items"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// MovementTotalsDTO agregados del libro de stock en un período.
type MovementTotalsDTO struct {
	Issued      decimal.Decimal `json:"issued"`
	Added       decimal.Decimal `json:"added"`
	Adjustments int             `json:"adjustments"`
	Movements   int             `json:"movements"`
}

// TopItemDTO artículo en el widget de consumo.
type TopItemDTO struct {
	StockItemID string          `json:"stock_item_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Issued      decimal.Decimal `json:"issued"`
	IssueCount  int             `json:"issue_count"`
}
