package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/factory-api/internal/application/stock"
	"github.com/jhoicas/factory-api/internal/application/workorder"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

// Ensure TxRunner implements workorder.TxRunner and stock.TxRunner.
var _ workorder.TxRunner = (*TxRunner)(nil)
var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunWorkOrders inicia una transacción con el repositorio de órdenes atado a ella.
func (r *TxRunner) RunWorkOrders(ctx context.Context, fn func(woRepo repository.WorkOrderRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewWorkOrderRepository(tx))
	})
}

// RunLedger inicia una transacción con los repositorios del libro de stock (y órdenes, para validar la imputación).
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	movRepo repository.StockMovementRepository,
	woRepo repository.WorkOrderRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockItemRepository(tx), NewStockMovementRepository(tx), NewWorkOrderRepository(tx))
	})
}
