package workorder

import (
	"context"
	"time"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

// RouteSheetUseCase arma la hoja de ruta (PDF) que acompaña a la orden en planta.
type RouteSheetUseCase struct {
	repo     repository.WorkOrderRepository
	renderer RouteSheetRenderer
	now      func() time.Time
}

// NewRouteSheetUseCase construye el caso de uso.
func NewRouteSheetUseCase(repo repository.WorkOrderRepository, renderer RouteSheetRenderer) *RouteSheetUseCase {
	return &RouteSheetUseCase{repo: repo, renderer: renderer, now: time.Now}
}

// Render devuelve el documento y su tipo MIME. ErrNotFound si la orden no existe.
func (uc *RouteSheetUseCase) Render(ctx context.Context, id string) ([]byte, string, error) {
	wo, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if wo == nil {
		return nil, "", domain.ErrNotFound
	}
	doc, err := uc.renderer.RenderRouteSheet(ctx, toWorkOrderResponse(wo), uc.now())
	if err != nil {
		return nil, "", err
	}
	return doc, uc.renderer.ContentType(), nil
}
