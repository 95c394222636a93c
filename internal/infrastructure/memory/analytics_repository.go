package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados del tablero sobre el estado en memoria.
type AnalyticsRepo struct {
	at access
}

// Analytics repositorio de analítica fuera de transacción.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{at: s.direct} }

func (r *AnalyticsRepo) CountWorkOrdersByStatus(_ context.Context) (map[string]int, error) {
	out := map[string]int{}
	err := r.at(false, func(st *state) error {
		for _, wo := range st.workOrders {
			out[wo.Status]++
		}
		return nil
	})
	return out, err
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (r *AnalyticsRepo) GetMovementTotals(_ context.Context, from, to time.Time) (repository.MovementTotals, error) {
	t := repository.MovementTotals{Issued: decimal.Zero, Added: decimal.Zero}
	err := r.at(false, func(st *state) error {
		for _, m := range st.movements {
			// salidas revertidas y sus compensaciones no cuentan en ningún total
			if !inRange(m.CreatedAt, from, to) || m.ReversedAt != nil || m.ReversalOf != nil {
				continue
			}
			t.Movements++
			switch m.Action {
			case entity.MovementIssue:
				t.Issued = t.Issued.Sub(m.Quantity)
			case entity.MovementAdd:
				t.Added = t.Added.Add(m.Quantity)
			case entity.MovementAdjust:
				t.Adjustments++
			}
		}
		return nil
	})
	return t, err
}

func (r *AnalyticsRepo) GetTopIssuedItems(_ context.Context, from, to time.Time, limit int) ([]repository.TopItemResult, error) {
	var out []repository.TopItemResult
	err := r.at(false, func(st *state) error {
		byItem := map[string]*repository.TopItemResult{}
		for _, m := range st.movements {
			if m.Action != entity.MovementIssue || m.ReversedAt != nil || !inRange(m.CreatedAt, from, to) {
				continue
			}
			row, ok := byItem[m.StockItemID]
			if !ok {
				it := st.items[m.StockItemID]
				row = &repository.TopItemResult{StockItemID: it.ID, Code: it.Code, Name: it.Name, Issued: decimal.Zero}
				byItem[m.StockItemID] = row
			}
			row.Issued = row.Issued.Sub(m.Quantity)
			row.IssueCount++
		}
		for _, row := range byItem {
			out = append(out, *row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Issued.Cmp(out[j].Issued); c != 0 {
			return c > 0
		}
		return out[i].Code < out[j].Code
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
