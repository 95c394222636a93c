package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/application/workorder"
	"github.com/jhoicas/factory-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional para reintentos seguros de operaciones que crean registros.
const HeaderIdempotencyKey = "Idempotency-Key"

// WorkOrderHandler maneja el tablero de órdenes y el avance por etapas (protegido).
type WorkOrderHandler struct {
	uc         *workorder.LifecycleUseCase
	routeSheet *workorder.RouteSheetUseCase
	val        *Validator
	log        *logger.Logger
}

// NewWorkOrderHandler construye el handler. routeSheet puede ser nil.
func NewWorkOrderHandler(uc *workorder.LifecycleUseCase, routeSheet *workorder.RouteSheetUseCase, val *Validator, log *logger.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{uc: uc, routeSheet: routeSheet, val: val, log: log}
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
}

// List godoc
// @Summary      Listar órdenes de trabajo
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado visible (p. ej. Planning Required)"
// @Param        search  query  string  false  "Número de orden o herramienta"
// @Param        limit   query  int     false  "Máximo 100"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.WorkOrderListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/work-orders [get]
func (h *WorkOrderHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), c.Query("status"), c.Query("search"), pageFromQuery(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden de trabajo con su progreso
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.WorkOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RouteSheet godoc
// @Summary      Hoja de ruta imprimible (PDF)
// @Tags         work-orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/route-sheet [get]
func (h *WorkOrderHandler) RouteSheet(c *fiber.Ctx) error {
	doc, contentType, err := h.routeSheet.Render(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, "inline; filename=hoja_ruta_"+c.Params("id")+".pdf")
	return c.Send(doc)
}

// Create godoc
// @Summary      Crear orden de trabajo
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWorkOrderRequest  true  "work_order_no, tool_ref, quantity, korv, flags"
// @Success      201  {object}  dto.WorkOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/work-orders [post]
func (h *WorkOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWorkOrderRequest
	if ok, err := h.val.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CompleteStage godoc
// @Summary      Completar una etapa
// @Description  Valida orden de etapas, flags de la orden y rol del usuario.
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string                    true   "ID de la orden"
// @Param        stage  path  string                    true   "Clave de etapa (factory_planning, production_completed, ...)"
// @Param        body   body  dto.CompleteStageRequest  false  "note, expected_version"
// @Success      200  {object}  dto.WorkOrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/stages/{stage} [post]
func (h *WorkOrderHandler) CompleteStage(c *fiber.Ctx) error {
	var in dto.CompleteStageRequest
	if ok, err := h.val.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CompleteStage(c.Context(), GetActor(c), c.Params("id"), c.Params("stage"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// AcceptQuality godoc
// @Summary      Aceptar calidad (total o parcial)
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true   "ID de la orden"
// @Param        body  body  dto.AcceptQualityRequest  false  "note, partial_qty"
// @Success      200  {object}  dto.WorkOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/quality/accept [post]
func (h *WorkOrderHandler) AcceptQuality(c *fiber.Ctx) error {
	var in dto.AcceptQualityRequest
	if ok, err := h.val.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AcceptQuality(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RejectQuality godoc
// @Summary      Rechazar calidad
// @Description  Crea la orden "_r" con la cantidad rechazada; sin rejected_qty el rechazo es total.
// @Tags         work-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string                    true   "ID de la orden"
// @Param        Idempotency-Key  header  string                    false  "Clave para reintentos seguros"
// @Param        body             body    dto.RejectQualityRequest  false  "note, rejected_qty"
// @Success      201  {object}  dto.RejectQualityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/quality/reject [post]
func (h *WorkOrderHandler) RejectQuality(c *fiber.Ctx) error {
	var in dto.RejectQualityRequest
	if ok, err := h.val.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.RejectQuality(c.Context(), GetActor(c), c.Params("id"), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
