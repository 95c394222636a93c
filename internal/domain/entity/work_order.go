package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claves de etapa de una orden de trabajo, en orden de ejecución.
const (
	StageFactoryPlanning     = "factory_planning"
	StageProductionCompleted = "production_completed"
	StageMarkingCompleted    = "marking_completed"
	StageSentToCoating       = "sent_to_coating"
	StageCoatingCompleted    = "coating_completed"
	StageReadyForDispatch    = "ready_for_dispatch"
	StageDispatched          = "dispatched"
)

// Estados visibles (columna status desnormalizada).
const (
	StatusPlanningRequired  = "Planning Required"
	StatusReadyForDispatch  = "Ready for Dispatch"
	StatusQualityDone       = "Quality Done"
	StatusPartiallyAccepted = "Partially Accepted"
	StatusRejected          = "Rejected"
	StatusDispatched        = "Dispatched"
)

// Resultado de la inspección de calidad.
const (
	QualityPending           = ""
	QualityAccepted          = "accepted"
	QualityPartiallyAccepted = "partially_accepted"
	QualityPartiallyRejected = "partially_rejected"
	QualityRejected          = "rejected"
)

// RejectSuffix sufijo del número de orden creada por un rechazo de calidad.
const RejectSuffix = "_r"

// StageMark marca de completado de una etapa: cuándo, quién y nota opcional.
type StageMark struct {
	At   *time.Time
	By   string
	Note string
}

// Done indica si la etapa tiene fecha de completado.
func (m StageMark) Done() bool {
	return m.At != nil
}

// WorkOrder orden de trabajo de planta. Las etapas se completan en orden;
// marcado y recubrimiento solo aplican si los flags correspondientes están activos.
type WorkOrder struct {
	ID              string
	WorkOrderNo     string
	ToolRef         string
	Quantity        decimal.Decimal
	Korv            decimal.Decimal // capacidad/esfuerzo, opaco para el dominio
	MarkingRequired bool
	CoatingRequired bool

	FactoryPlanning     StageMark
	ProductionCompleted StageMark
	MarkingCompleted    StageMark
	SentToCoating       StageMark
	CoatingCompleted    StageMark
	ReadyForDispatch    StageMark
	Dispatched          StageMark

	QualityOutcome    string
	QualityAcceptedAt *time.Time
	QualityAcceptedBy string
	QualityPartialQty *decimal.Decimal
	QualityRejectedAt *time.Time
	QualityRejectedBy string
	QualityNote       string
	RejectedQty       *decimal.Decimal

	ReplanRequired bool
	ParentID       string // orden original cuando es un "_r"
	Status         string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Mark devuelve un puntero a la marca de la etapa indicada, o nil si la clave no existe.
func (w *WorkOrder) Mark(stage string) *StageMark {
	switch stage {
	case StageFactoryPlanning:
		return &w.FactoryPlanning
	case StageProductionCompleted:
		return &w.ProductionCompleted
	case StageMarkingCompleted:
		return &w.MarkingCompleted
	case StageSentToCoating:
		return &w.SentToCoating
	case StageCoatingCompleted:
		return &w.CoatingCompleted
	case StageReadyForDispatch:
		return &w.ReadyForDispatch
	case StageDispatched:
		return &w.Dispatched
	}
	return nil
}

// IsTerminal despachada o rechazada por completo.
func (w *WorkOrder) IsTerminal() bool {
	return w.Dispatched.Done() || w.QualityOutcome == QualityRejected
}

// WorkOrderFilter filtros para el listado del tablero.
type WorkOrderFilter struct {
	Status string
	Search string // coincide con número de orden o herramienta
	Limit  int
	Offset int
}
