package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

var _ repository.WorkOrderRepository = (*WorkOrderRepo)(nil)

// WorkOrderRepo implementación de WorkOrderRepository sobre PostgreSQL (usable con pool o tx).
type WorkOrderRepo struct {
	q Querier
}

// NewWorkOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkOrderRepository(q Querier) *WorkOrderRepo {
	return &WorkOrderRepo{q: q}
}

const workOrderColumns = `
	id, work_order_no, tool_ref, quantity, korv, marking_required, coating_required,
	factory_planning_at, factory_planning_by, factory_planning_note,
	production_completed_at, production_completed_by, production_completed_note,
	marking_completed_at, marking_completed_by, marking_completed_note,
	sent_to_coating_at, sent_to_coating_by, sent_to_coating_note,
	coating_completed_at, coating_completed_by, coating_completed_note,
	ready_for_dispatch_at, ready_for_dispatch_by, ready_for_dispatch_note,
	dispatched_at, dispatched_by, dispatched_note,
	quality_outcome, quality_accepted_at, quality_accepted_by, quality_partial_qty,
	quality_rejected_at, quality_rejected_by, quality_note, rejected_qty,
	replan_required, parent_id, status, version, created_at, updated_at`

// values orden idéntico a workOrderColumns.
func workOrderValues(wo *entity.WorkOrder) []any {
	v := []any{wo.ID, wo.WorkOrderNo, wo.ToolRef, wo.Quantity, wo.Korv, wo.MarkingRequired, wo.CoatingRequired}
	for _, m := range stageMarks(wo) {
		v = append(v, m.At, m.By, m.Note)
	}
	return append(v,
		wo.QualityOutcome, wo.QualityAcceptedAt, wo.QualityAcceptedBy, wo.QualityPartialQty,
		wo.QualityRejectedAt, wo.QualityRejectedBy, wo.QualityNote, wo.RejectedQty,
		wo.ReplanRequired, nullable(wo.ParentID), wo.Status, wo.Version, wo.CreatedAt, wo.UpdatedAt,
	)
}

func stageMarks(wo *entity.WorkOrder) []*entity.StageMark {
	return []*entity.StageMark{
		&wo.FactoryPlanning, &wo.ProductionCompleted, &wo.MarkingCompleted,
		&wo.SentToCoating, &wo.CoatingCompleted, &wo.ReadyForDispatch, &wo.Dispatched,
	}
}

func scanWorkOrder(row pgx.Row) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	var parentID *string
	dest := []any{&wo.ID, &wo.WorkOrderNo, &wo.ToolRef, &wo.Quantity, &wo.Korv, &wo.MarkingRequired, &wo.CoatingRequired}
	for _, m := range stageMarks(&wo) {
		dest = append(dest, &m.At, &m.By, &m.Note)
	}
	dest = append(dest,
		&wo.QualityOutcome, &wo.QualityAcceptedAt, &wo.QualityAcceptedBy, &wo.QualityPartialQty,
		&wo.QualityRejectedAt, &wo.QualityRejectedBy, &wo.QualityNote, &wo.RejectedQty,
		&wo.ReplanRequired, &parentID, &wo.Status, &wo.Version, &wo.CreatedAt, &wo.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	wo.ParentID = deref(parentID)
	return &wo, nil
}

// Create persiste una orden nueva.
func (r *WorkOrderRepo) Create(ctx context.Context, wo *entity.WorkOrder) error {
	query := `INSERT INTO work_orders (` + workOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33, $34, $35, $36,
			$37, $38, $39, $40, $41, $42)`
	if _, err := r.q.Exec(ctx, query, workOrderValues(wo)...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert work order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID; (nil, nil) si no existe.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.get(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
func (r *WorkOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.get(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *WorkOrderRepo) get(ctx context.Context, query, id string) (*entity.WorkOrder, error) {
	wo, err := scanWorkOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return wo, nil
}

// Update reescribe marcas, calidad y estado si la versión no cambió; incrementa wo.Version.
func (r *WorkOrderRepo) Update(ctx context.Context, wo *entity.WorkOrder) error {
	query := `
		UPDATE work_orders SET
			quantity = $3,
			factory_planning_at = $4, factory_planning_by = $5, factory_planning_note = $6,
			production_completed_at = $7, production_completed_by = $8, production_completed_note = $9,
			marking_completed_at = $10, marking_completed_by = $11, marking_completed_note = $12,
			sent_to_coating_at = $13, sent_to_coating_by = $14, sent_to_coating_note = $15,
			coating_completed_at = $16, coating_completed_by = $17, coating_completed_note = $18,
			ready_for_dispatch_at = $19, ready_for_dispatch_by = $20, ready_for_dispatch_note = $21,
			dispatched_at = $22, dispatched_by = $23, dispatched_note = $24,
			quality_outcome = $25, quality_accepted_at = $26, quality_accepted_by = $27, quality_partial_qty = $28,
			quality_rejected_at = $29, quality_rejected_by = $30, quality_note = $31, rejected_qty = $32,
			replan_required = $33, status = $34, updated_at = $35,
			version = version + 1
		WHERE id = $1 AND version = $2`
	args := []any{wo.ID, wo.Version, wo.Quantity}
	for _, m := range stageMarks(wo) {
		args = append(args, m.At, m.By, m.Note)
	}
	args = append(args,
		wo.QualityOutcome, wo.QualityAcceptedAt, wo.QualityAcceptedBy, wo.QualityPartialQty,
		wo.QualityRejectedAt, wo.QualityRejectedBy, wo.QualityNote, wo.RejectedQty,
		wo.ReplanRequired, wo.Status, wo.UpdatedAt,
	)
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	wo.Version++
	return nil
}

// ExistsNo indica si ya hay una orden con ese número.
func (r *WorkOrderRepo) ExistsNo(ctx context.Context, workOrderNo string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM work_orders WHERE work_order_no = $1)`, workOrderNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists work order no: %w", err)
	}
	return exists, nil
}

// List órdenes del tablero filtradas por estado y búsqueda, más recientes primero.
func (r *WorkOrderRepo) List(ctx context.Context, f entity.WorkOrderFilter) ([]*entity.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR work_order_no ILIKE '%' || $2 || '%' OR tool_ref ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, work_order_no DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.Status, f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		list = append(list, wo)
	}
	return list, rows.Err()
}
