package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

var _ repository.WorkOrderRepository = (*WorkOrderRepo)(nil)

// WorkOrderRepo implementación en memoria de WorkOrderRepository.
type WorkOrderRepo struct {
	at access
}

// Create inserta la orden. ErrDuplicate si el número ya existe.
func (r *WorkOrderRepo) Create(_ context.Context, wo *entity.WorkOrder) error {
	return r.at(true, func(st *state) error {
		if _, ok := st.workOrders[wo.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range st.workOrders {
			if existing.WorkOrderNo == wo.WorkOrderNo {
				return domain.ErrDuplicate
			}
		}
		st.workOrders[wo.ID] = *wo
		st.touch(wo.ID)
		return nil
	})
}

// GetByID devuelve una copia de la orden, o (nil, nil) si no existe.
func (r *WorkOrderRepo) GetByID(_ context.Context, id string) (*entity.WorkOrder, error) {
	var out *entity.WorkOrder
	err := r.at(false, func(st *state) error {
		if wo, ok := st.workOrders[id]; ok {
			out = &wo
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID; el bloqueo lo da la transacción.
func (r *WorkOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza la orden si Version coincide e incrementa la versión.
func (r *WorkOrderRepo) Update(_ context.Context, wo *entity.WorkOrder) error {
	return r.at(true, func(st *state) error {
		current, ok := st.workOrders[wo.ID]
		if !ok || current.Version != wo.Version {
			return domain.ErrVersionConflict
		}
		wo.Version++
		st.workOrders[wo.ID] = *wo
		return nil
	})
}

// ExistsNo indica si ya hay una orden con ese número.
func (r *WorkOrderRepo) ExistsNo(_ context.Context, workOrderNo string) (bool, error) {
	found := false
	err := r.at(false, func(st *state) error {
		for _, wo := range st.workOrders {
			if wo.WorkOrderNo == workOrderNo {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

// List filtra por estado y búsqueda (número o herramienta), más recientes primero.
func (r *WorkOrderRepo) List(_ context.Context, filter entity.WorkOrderFilter) ([]*entity.WorkOrder, error) {
	var out []*entity.WorkOrder
	err := r.at(false, func(st *state) error {
		search := strings.ToLower(filter.Search)
		for _, wo := range st.workOrders {
			if filter.Status != "" && wo.Status != filter.Status {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(wo.WorkOrderNo), search) &&
				!strings.Contains(strings.ToLower(wo.ToolRef), search) {
				continue
			}
			wo := wo
			out = append(out, &wo)
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
	return page(out, filter.Offset, filter.Limit), nil
}

func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
