package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `m.id, m.stock_item_id, m.action, m.quantity, m.reason, m.work_order_id,
	m.performed_by, m.created_at, m.reversed_at, m.reversed_by, m.reversal_of`

func movementDest(m *entity.StockMovement, reversedBy **string) []any {
	return []any{
		&m.ID, &m.StockItemID, &m.Action, &m.Quantity, &m.Reason, &m.WorkOrderID,
		&m.PerformedBy, &m.CreatedAt, &m.ReversedAt, reversedBy, &m.ReversalOf,
	}
}

// Create inserta un asiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, stock_item_id, action, quantity, reason, work_order_id,
			performed_by, created_at, reversed_at, reversed_by, reversal_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.StockItemID, m.Action, m.Quantity, m.Reason, m.WorkOrderID,
		m.PerformedBy, m.CreatedAt, m.ReversedAt, nullable(m.ReversedBy), m.ReversalOf,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetForUpdate obtiene el movimiento y bloquea la fila; (nil, nil) si no existe.
func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements m WHERE m.id = $1 FOR UPDATE`
	var m entity.StockMovement
	var reversedBy *string
	if err := r.q.QueryRow(ctx, query, id).Scan(movementDest(&m, &reversedBy)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	m.ReversedBy = deref(reversedBy)
	return &m, nil
}

// MarkReversed condicional a reversed_at IS NULL: una reversa concurrente pierde con ErrNotReversible.
func (r *StockMovementRepo) MarkReversed(ctx context.Context, m *entity.StockMovement) error {
	query := `
		UPDATE stock_movements SET reversed_at = $2, reversed_by = $3
		WHERE id = $1 AND reversed_at IS NULL`
	tag, err := r.q.Exec(ctx, query, m.ID, m.ReversedAt, m.ReversedBy)
	if err != nil {
		return fmt.Errorf("mark movement reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotReversible
	}
	return nil
}

// List movimientos con código/nombre del artículo y número de orden, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f entity.StockMovementFilter) ([]*entity.StockMovementView, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.StockItemID != "" {
		add("m.stock_item_id = $%d", f.StockItemID)
	}
	if f.WorkOrderID != "" {
		add("m.work_order_id = $%d", f.WorkOrderID)
	}
	if f.Action != "" {
		add("m.action = $%d", f.Action)
	}
	if f.From != nil {
		add("m.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("m.created_at <= $%d", *f.To)
	}

	query := `SELECT ` + movementColumns + `, i.code, i.name, COALESCE(w.work_order_no, '')
		FROM stock_movements m
		JOIN stock_items i ON i.id = m.stock_item_id
		LEFT JOIN work_orders w ON w.id = m.work_order_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY m.created_at DESC, m.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovementView
	for rows.Next() {
		var v entity.StockMovementView
		var reversedBy *string
		dest := append(movementDest(&v.StockMovement, &reversedBy), &v.ItemCode, &v.ItemName, &v.WorkOrderNo)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		v.ReversedBy = deref(reversedBy)
		list = append(list, &v)
	}
	return list, rows.Err()
}

// ListByItem historial completo de un artículo en orden cronológico.
func (r *StockMovementRepo) ListByItem(ctx context.Context, stockItemID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements m
		WHERE m.stock_item_id = $1 ORDER BY m.created_at, m.id`
	rows, err := r.q.Query(ctx, query, stockItemID)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var reversedBy *string
		if err := rows.Scan(movementDest(&m, &reversedBy)...); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.ReversedBy = deref(reversedBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
