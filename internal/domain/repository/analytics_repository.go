package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MovementTotals agregados del libro en un rango. Issued y Added excluyen salidas
// revertidas y sus compensaciones, para que una reversa no infle ambos lados.
type MovementTotals struct {
	Issued      decimal.Decimal // unidades consumidas (positivo)
	Added       decimal.Decimal // unidades ingresadas
	Adjustments int             // cantidad de ajustes
	Movements   int             // asientos del rango sin salidas revertidas ni compensaciones
}

// TopItemResult artículo con su consumo en el rango.
type TopItemResult struct {
	StockItemID string
	Code        string
	Name        string
	Issued      decimal.Decimal
	IssueCount  int
}

// AnalyticsRepository consultas de solo lectura para el tablero de planta.
type AnalyticsRepository interface {
	// CountWorkOrdersByStatus órdenes por estado visible ("Planning Required", "Dispatched", ...).
	CountWorkOrdersByStatus(ctx context.Context) (map[string]int, error)
	GetMovementTotals(ctx context.Context, from, to time.Time) (MovementTotals, error)
	// GetTopIssuedItems artículos más consumidos, de mayor a menor.
	GetTopIssuedItems(ctx context.Context, from, to time.Time, limit int) ([]TopItemResult, error)
}
