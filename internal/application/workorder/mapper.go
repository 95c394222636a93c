package workorder

import (
	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/lifecycle"
)

func toWorkOrderResponse(wo *entity.WorkOrder) *dto.WorkOrderResponse {
	if wo == nil {
		return nil
	}
	progress := lifecycle.Progress(wo)
	stages := make([]dto.StageMarkResponse, 0, len(progress))
	for _, p := range progress {
		stages = append(stages, dto.StageMarkResponse{
			Key:       p.Key,
			Label:     p.Label,
			Completed: p.Mark.Done(),
			At:        p.Mark.At,
			By:        p.Mark.By,
			Note:      p.Mark.Note,
			Next:      p.Next,
		})
	}
	return &dto.WorkOrderResponse{
		ID:              wo.ID,
		WorkOrderNo:     wo.WorkOrderNo,
		ToolRef:         wo.ToolRef,
		Quantity:        wo.Quantity,
		Korv:            wo.Korv,
		MarkingRequired: wo.MarkingRequired,
		CoatingRequired: wo.CoatingRequired,
		Status:          lifecycle.DeriveStatus(wo),
		NextStage:       lifecycle.NextStage(wo),
		ReplanRequired:  wo.ReplanRequired,
		ParentID:        wo.ParentID,
		Stages:          stages,
		Quality: dto.QualityResponse{
			Outcome:     wo.QualityOutcome,
			AcceptedAt:  wo.QualityAcceptedAt,
			AcceptedBy:  wo.QualityAcceptedBy,
			PartialQty:  wo.QualityPartialQty,
			RejectedAt:  wo.QualityRejectedAt,
			RejectedBy:  wo.QualityRejectedBy,
			RejectedQty: wo.RejectedQty,
			Note:        wo.QualityNote,
		},
		Version:   wo.Version,
		CreatedAt: wo.CreatedAt,
		UpdatedAt: wo.UpdatedAt,
	}
}
