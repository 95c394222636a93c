package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

var (
	_ repository.StockItemRepository     = (*StockItemRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// StockItemRepo implementación en memoria de StockItemRepository.
type StockItemRepo struct {
	at access
}

func (r *StockItemRepo) Create(_ context.Context, item *entity.StockItem) error {
	return r.at(true, func(st *state) error {
		for _, existing := range st.items {
			if existing.Code == item.Code {
				return domain.ErrDuplicate
			}
		}
		st.items[item.ID] = *item
		st.touch(item.ID)
		return nil
	})
}

func (r *StockItemRepo) GetByID(_ context.Context, id string) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := r.at(false, func(st *state) error {
		if it, ok := st.items[id]; ok {
			out = &it
		}
		return nil
	})
	return out, err
}

func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.GetByID(ctx, id)
}

// UpdateQuantity compare-and-swap sobre Version.
func (r *StockItemRepo) UpdateQuantity(_ context.Context, item *entity.StockItem) error {
	return r.at(true, func(st *state) error {
		current, ok := st.items[item.ID]
		if !ok || current.Version != item.Version {
			return domain.ErrVersionConflict
		}
		current.Quantity = item.Quantity
		current.UpdatedAt = item.UpdatedAt
		current.Version++
		item.Version = current.Version
		st.items[item.ID] = current
		return nil
	})
}

func (r *StockItemRepo) List(_ context.Context, filter entity.StockItemFilter) ([]*entity.StockItem, error) {
	var out []*entity.StockItem
	err := r.at(false, func(st *state) error {
		search := strings.ToLower(filter.Search)
		for _, it := range st.items {
			if filter.Group != "" && !strings.EqualFold(it.Group, filter.Group) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(it.Code), search) &&
				!strings.Contains(strings.ToLower(it.Name), search) {
				continue
			}
			it := it
			out = append(out, &it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, filter.Offset, filter.Limit), nil
}

// StockMovementRepo implementación en memoria del libro de movimientos.
type StockMovementRepo struct {
	at access
}

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.at(true, func(st *state) error {
		if _, ok := st.items[m.StockItemID]; !ok {
			return domain.ErrNotFound
		}
		st.movements[m.ID] = *m
		st.touch(m.ID)
		return nil
	})
}

func (r *StockMovementRepo) GetForUpdate(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.at(false, func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

// MarkReversed solo si el movimiento sigue sin revertir.
func (r *StockMovementRepo) MarkReversed(_ context.Context, m *entity.StockMovement) error {
	return r.at(true, func(st *state) error {
		current, ok := st.movements[m.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if current.ReversedAt != nil {
			return domain.ErrNotReversible
		}
		current.ReversedAt = m.ReversedAt
		current.ReversedBy = m.ReversedBy
		st.movements[m.ID] = current
		return nil
	})
}

// List movimientos con código/nombre del artículo y número de orden, más recientes primero.
func (r *StockMovementRepo) List(_ context.Context, f entity.StockMovementFilter) ([]*entity.StockMovementView, error) {
	var out []*entity.StockMovementView
	err := r.at(false, func(st *state) error {
		for _, m := range st.movements {
			if f.StockItemID != "" && m.StockItemID != f.StockItemID {
				continue
			}
			if f.WorkOrderID != "" && (m.WorkOrderID == nil || *m.WorkOrderID != f.WorkOrderID) {
				continue
			}
			if f.Action != "" && m.Action != f.Action {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			v := &entity.StockMovementView{StockMovement: m}
			if it, ok := st.items[m.StockItemID]; ok {
				v.ItemCode, v.ItemName = it.Code, it.Name
			}
			if m.WorkOrderID != nil {
				if wo, ok := st.workOrders[*m.WorkOrderID]; ok {
					v.WorkOrderNo = wo.WorkOrderNo
				}
			}
			out = append(out, v)
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return st.seq[out[i].ID] > st.seq[out[j].ID]
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(out, 0, f.Limit), nil
}

// ListByItem historial completo de un artículo en orden de inserción.
func (r *StockMovementRepo) ListByItem(_ context.Context, stockItemID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.at(false, func(st *state) error {
		for _, m := range st.movements {
			if m.StockItemID == stockItemID {
				m := m
				out = append(out, &m)
			}
		}
		sort.Slice(out, func(i, j int) bool { return st.seq[out[i].ID] < st.seq[out[j].ID] })
		return nil
	})
	return out, err
}
