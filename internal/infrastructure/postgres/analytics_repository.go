package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/factory-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el tablero de planta.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// CountWorkOrdersByStatus agrupa las órdenes por su estado almacenado.
func (r *AnalyticsRepo) CountWorkOrdersByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM work_orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("analytics.CountWorkOrdersByStatus: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("analytics.CountWorkOrdersByStatus scan: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// GetMovementTotals suma entradas y salidas del rango.
// Excluye salidas revertidas (reversed_at no nulo) y sus compensaciones (reversal_of no nulo).
func (r *AnalyticsRepo) GetMovementTotals(ctx context.Context, from, to time.Time) (repository.MovementTotals, error) {
	const query = `
	SELECT
	    COALESCE(SUM(-quantity) FILTER (WHERE action = 'ISSUE'), 0) AS issued,
	    COALESCE(SUM(quantity)  FILTER (WHERE action = 'ADD'), 0)   AS added,
	    COUNT(*) FILTER (WHERE action = 'ADJUST')                   AS adjustments,
	    COUNT(*)                                                    AS movements
	FROM stock_movements
	WHERE created_at BETWEEN $1 AND $2
	  AND reversed_at IS NULL
	  AND reversal_of IS NULL`

	var t repository.MovementTotals
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&t.Issued, &t.Added, &t.Adjustments, &t.Movements); err != nil {
		return repository.MovementTotals{}, fmt.Errorf("analytics.GetMovementTotals: %w", err)
	}
	return t, nil
}

// GetTopIssuedItems ranking de consumo por artículo; ignora salidas revertidas.
func (r *AnalyticsRepo) GetTopIssuedItems(ctx context.Context, from, to time.Time, limit int) ([]repository.TopItemResult, error) {
	const query = `
	SELECT i.id, i.code, i.name, SUM(-m.quantity) AS issued, COUNT(*) AS issue_count
	FROM stock_movements m
	JOIN stock_items i ON i.id = m.stock_item_id
	WHERE m.action = 'ISSUE'
	  AND m.reversed_at IS NULL
	  AND m.created_at BETWEEN $1 AND $2
	GROUP BY i.id, i.code, i.name
	ORDER BY issued DESC, i.code
	LIMIT $3`

	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopIssuedItems: %w", err)
	}
	defer rows.Close()

	var results []repository.TopItemResult
	for rows.Next() {
		var row repository.TopItemResult
		if err := rows.Scan(&row.StockItemID, &row.Code, &row.Name, &row.Issued, &row.IssueCount); err != nil {
			return nil, fmt.Errorf("analytics.GetTopIssuedItems scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
