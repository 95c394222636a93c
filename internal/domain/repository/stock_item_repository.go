package repository

import (
	"context"

	"github.com/jhoicas/factory-api/internal/domain/entity"
)

// StockItemRepository define el puerto para artículos de stock.
// UpdateQuantity aplica compare-and-swap sobre Version.
type StockItemRepository interface {
	Create(ctx context.Context, item *entity.StockItem) error
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	UpdateQuantity(ctx context.Context, item *entity.StockItem) error
	List(ctx context.Context, filter entity.StockItemFilter) ([]*entity.StockItem, error)
}
