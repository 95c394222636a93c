package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem artículo de stock (materia prima, consumible, herramienta).
// Quantity es derivada del libro de movimientos; se mantiene en la fila para lectura rápida.
type StockItem struct {
	ID        string
	Code      string // único, normalizado en mayúsculas
	Name      string
	Group     string
	Location  string
	Quantity  decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockItemFilter filtros para el listado de artículos.
type StockItemFilter struct {
	Group  string
	Search string
	Limit  int
	Offset int
}
