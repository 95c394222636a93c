package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/application/stock"
	"github.com/jhoicas/factory-api/pkg/logger"
)

// StockHandler maneja artículos y el libro de movimientos (protegido).
type StockHandler struct {
	uc  *stock.LedgerUseCase
	val *Validator
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.LedgerUseCase, val *Validator, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, val: val, log: log}
}

// ListItems godoc
// @Summary      Listar artículos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        group   query  string  false  "Grupo"
// @Param        search  query  string  false  "Código o nombre"
// @Success      200  {object}  dto.StockItemListResponse
// @Router       /api/stock/items [get]
func (h *StockHandler) ListItems(c *fiber.Ctx) error {
	out, err := h.uc.ListStockItems(c.Context(), c.Query("group"), c.Query("search"), pageFromQuery(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetItem godoc
// @Summary      Obtener artículo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id} [get]
func (h *StockHandler) GetItem(c *fiber.Ctx) error {
	out, err := h.uc.GetStockItem(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateItem godoc
// @Summary      Crear artículo
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockItemRequest  true  "code, name, group, location"
// @Success      201  {object}  dto.StockItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/items [post]
func (h *StockHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateStockItemRequest
	if ok, err := h.val.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateStockItem(c.Context(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Issue godoc
// @Summary      Salida de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string                 true   "ID del artículo"
// @Param        Idempotency-Key  header  string                 false  "Clave para reintentos seguros"
// @Param        body             body    dto.IssueStockRequest  true   "quantity, reason, work_order_id"
// @Success      201  {object}  dto.StockOperationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id}/issue [post]
func (h *StockHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueStockRequest
	if ok, err := h.val.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.IssueStock(c.Context(), GetActor(c), c.Params("id"), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Add godoc
// @Summary      Entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string               true   "ID del artículo"
// @Param        Idempotency-Key  header  string               false  "Clave para reintentos seguros"
// @Param        body             body    dto.AddStockRequest  true   "quantity, reason"
// @Success      201  {object}  dto.StockOperationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id}/add [post]
func (h *StockHandler) Add(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if ok, err := h.val.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddStock(c.Context(), GetActor(c), c.Params("id"), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Adjust godoc
// @Summary      Ajuste a cantidad absoluta
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id               path    string                  true   "ID del artículo"
// @Param        Idempotency-Key  header  string                  false  "Clave para reintentos seguros"
// @Param        body             body    dto.AdjustStockRequest  true   "new_quantity, reason"
// @Success      201  {object}  dto.StockOperationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id}/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := h.val.parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.AdjustStock(c.Context(), GetActor(c), c.Params("id"), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        stock_item_id  query  string  false  "UUID del artículo"
// @Param        work_order_id  query  string  false  "UUID de la orden"
// @Param        action         query  string  false  "ISSUE | ADD | ADJUST"
// @Param        from           query  string  false  "YYYY-MM-DD"
// @Param        to             query  string  false  "YYYY-MM-DD (inclusive)"
// @Success      200  {array}   dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.StockMovementQuery
	if ok, err := h.val.parseQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.ListStockMovements(c.Context(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(out),
		"movements": out,
	})
}

// ExportMovements godoc
// @Summary      Exportar movimientos a Excel
// @Tags         stock
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        stock_item_id  query  string  false  "UUID del artículo"
// @Param        work_order_id  query  string  false  "UUID de la orden"
// @Param        action         query  string  false  "ISSUE | ADD | ADJUST"
// @Param        from           query  string  false  "YYYY-MM-DD"
// @Param        to             query  string  false  "YYYY-MM-DD (inclusive)"
// @Success      200  {file}  file
// @Router       /api/stock/movements/export [get]
func (h *StockHandler) ExportMovements(c *fiber.Ctx) error {
	var q dto.StockMovementQuery
	if ok, err := h.val.parseQuery(c, &q); !ok {
		return err
	}
	var buf bytes.Buffer
	if err := h.uc.ExportStockMovements(c.Context(), q, &buf); err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, h.uc.ExportContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=movimientos_%s.xlsx", time.Now().Format("20060102")))
	return c.Send(buf.Bytes())
}

// ReverseMovement godoc
// @Summary      Revertir una salida
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID del movimiento ISSUE"
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Success      201  {object}  dto.StockOperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id}/reverse [post]
func (h *StockHandler) ReverseMovement(c *fiber.Ctx) error {
	out, err := h.uc.ReverseIssueMovement(c.Context(), GetActor(c), c.Params("id"), c.Get(HeaderIdempotencyKey))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
