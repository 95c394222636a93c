package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWorkOrderRequest alta manual de una orden (normalmente las crea la línea de compra).
type CreateWorkOrderRequest struct {
	WorkOrderNo     string          `json:"work_order_no" validate:"required,max=64"`
	ToolRef         string          `json:"tool_ref" validate:"required,max=100"`
	Quantity        decimal.Decimal `json:"quantity"`
	Korv            decimal.Decimal `json:"korv"`
	MarkingRequired bool            `json:"marking_required"`
	CoatingRequired bool            `json:"coating_required"`
}

// CompleteStageRequest body para POST /api/work-orders/:id/stages/:stage.
type CompleteStageRequest struct {
	Note            string `json:"note" validate:"max=500"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// AcceptQualityRequest aceptación de calidad; partial_qty opcional.
type AcceptQualityRequest struct {
	Note            string           `json:"note" validate:"max=500"`
	PartialQty      *decimal.Decimal `json:"partial_qty,omitempty"`
	ExpectedVersion *int64           `json:"expected_version,omitempty"`
}

// RejectQualityRequest rechazo de calidad; rejected_qty vacío = rechazo total.
type RejectQualityRequest struct {
	Note            string           `json:"note" validate:"max=500"`
	RejectedQty     *decimal.Decimal `json:"rejected_qty,omitempty"`
	ExpectedVersion *int64           `json:"expected_version,omitempty"`
}

// StageMarkResponse marca de completado de una etapa.
type StageMarkResponse struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Completed bool       `json:"completed"`
	At        *time.Time `json:"at,omitempty"`
	By        string     `json:"by,omitempty"`
	Note      string     `json:"note,omitempty"`
	Next      bool       `json:"next"`
}

// QualityResponse estado de la inspección de calidad.
type QualityResponse struct {
	Outcome     string           `json:"outcome,omitempty"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
	AcceptedBy  string           `json:"accepted_by,omitempty"`
	PartialQty  *decimal.Decimal `json:"partial_qty,omitempty"`
	RejectedAt  *time.Time       `json:"rejected_at,omitempty"`
	RejectedBy  string           `json:"rejected_by,omitempty"`
	RejectedQty *decimal.Decimal `json:"rejected_qty,omitempty"`
	Note        string           `json:"note,omitempty"`
}

// WorkOrderResponse salida de una orden con su progreso por etapas.
type WorkOrderResponse struct {
	ID              string              `json:"id"`
	WorkOrderNo     string              `json:"work_order_no"`
	ToolRef         string              `json:"tool_ref"`
	Quantity        decimal.Decimal     `json:"quantity"`
	Korv            decimal.Decimal     `json:"korv"`
	MarkingRequired bool                `json:"marking_required"`
	CoatingRequired bool                `json:"coating_required"`
	Status          string              `json:"status"`
	NextStage       string              `json:"next_stage,omitempty"`
	ReplanRequired  bool                `json:"replan_required"`
	ParentID        string              `json:"parent_id,omitempty"`
	Stages          []StageMarkResponse `json:"stages"`
	Quality         QualityResponse     `json:"quality"`
	Version         int64               `json:"version"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// RejectQualityResponse orden original actualizada + orden "_r" creada.
type RejectQualityResponse struct {
	Original WorkOrderResponse `json:"original"`
	Rejected WorkOrderResponse `json:"rejected"`
}

// WorkOrderListResponse lista paginada de órdenes.
type WorkOrderListResponse struct {
	Items []WorkOrderResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
