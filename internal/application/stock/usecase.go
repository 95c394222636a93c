package stock

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/application/ports"
	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/ledger"
	"github.com/jhoicas/factory-api/internal/domain/repository"
	"github.com/jhoicas/factory-api/pkg/logger"
)

const defaultMovementLimit = 500

// LedgerUseCase casos de uso del libro de stock. Toda mutación corre en una transacción:
// bloquea el artículo (FOR UPDATE), calcula con el paquete ledger y escribe cantidad + asiento.
type LedgerUseCase struct {
	tx            TxRunner
	items         repository.StockItemRepository
	movements     repository.StockMovementRepository
	exporter      MovementExporter
	guard         ports.IdempotencyGuard
	log           *logger.Logger
	movementLimit int
	now           func() time.Time
}

// NewLedgerUseCase construye el caso de uso. movementLimit <= 0 usa 500; guard nil desactiva idempotencia.
func NewLedgerUseCase(
	tx TxRunner,
	items repository.StockItemRepository,
	movements repository.StockMovementRepository,
	exporter MovementExporter,
	guard ports.IdempotencyGuard,
	log *logger.Logger,
	movementLimit int,
) *LedgerUseCase {
	if guard == nil {
		guard = ports.NoopGuard{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if movementLimit <= 0 {
		movementLimit = defaultMovementLimit
	}
	return &LedgerUseCase{
		tx:            tx,
		items:         items,
		movements:     movements,
		exporter:      exporter,
		guard:         guard,
		log:           log.Component("stock"),
		movementLimit: movementLimit,
		now:           time.Now,
	}
}

// NormalizeCode código en mayúsculas, NFC y sin espacios sobrantes ("st-01 " → "ST-01").
// cases.Caser no es seguro entre goroutines; se crea por llamada.
func NormalizeCode(code string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(strings.TrimSpace(code)))
}

// CreateStockItem alta de artículo en cantidad cero.
func (uc *LedgerUseCase) CreateStockItem(ctx context.Context, in dto.CreateStockItemRequest) (*dto.StockItemResponse, error) {
	code := NormalizeCode(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	item := &entity.StockItem{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      name,
		Group:     strings.TrimSpace(in.Group),
		Location:  strings.TrimSpace(in.Location),
		Quantity:  decimal.Zero,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.log.Info().Str("code", item.Code).Msg("artículo creado")
	out := toStockItemResponse(item)
	return &out, nil
}

// GetStockItem devuelve un artículo. ErrNotFound si no existe.
func (uc *LedgerUseCase) GetStockItem(ctx context.Context, id string) (*dto.StockItemResponse, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	out := toStockItemResponse(item)
	return &out, nil
}

// ListStockItems lista artículos por grupo y/o búsqueda en código o nombre.
func (uc *LedgerUseCase) ListStockItems(ctx context.Context, group, search string, page dto.PageRequest) (*dto.StockItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.items.List(ctx, entity.StockItemFilter{
		Group:  strings.TrimSpace(group),
		Search: strings.TrimSpace(search),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, toStockItemResponse(it))
	}
	return &dto.StockItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// IssueStock salida de stock, opcionalmente imputada a una orden de trabajo existente.
func (uc *LedgerUseCase) IssueStock(ctx context.Context, actor ports.Actor, itemID, idempotencyKey string, in dto.IssueStockRequest) (*dto.StockOperationResponse, error) {
	var woID *string
	if id := strings.TrimSpace(in.WorkOrderID); id != "" {
		woID = &id
	}
	return uc.apply(ctx, "issue", itemID, idempotencyKey, func(woRepo repository.WorkOrderRepository, item *entity.StockItem, now time.Time) (ledger.Entry, error) {
		if woID != nil {
			wo, err := woRepo.GetByID(ctx, *woID)
			if err != nil {
				return ledger.Entry{}, err
			}
			if wo == nil {
				return ledger.Entry{}, domain.ErrNotFound
			}
		}
		return ledger.Issue(item, in.Quantity, strings.TrimSpace(in.Reason), woID, actor.Performer(), now)
	})
}

// AddStock entrada de stock.
func (uc *LedgerUseCase) AddStock(ctx context.Context, actor ports.Actor, itemID, idempotencyKey string, in dto.AddStockRequest) (*dto.StockOperationResponse, error) {
	return uc.apply(ctx, "add", itemID, idempotencyKey, func(_ repository.WorkOrderRepository, item *entity.StockItem, now time.Time) (ledger.Entry, error) {
		return ledger.Add(item, in.Quantity, strings.TrimSpace(in.Reason), actor.Performer(), now)
	})
}

// AdjustStock fija la cantidad absoluta tras un conteo físico.
func (uc *LedgerUseCase) AdjustStock(ctx context.Context, actor ports.Actor, itemID, idempotencyKey string, in dto.AdjustStockRequest) (*dto.StockOperationResponse, error) {
	return uc.apply(ctx, "adjust", itemID, idempotencyKey, func(_ repository.WorkOrderRepository, item *entity.StockItem, now time.Time) (ledger.Entry, error) {
		return ledger.Adjust(item, in.NewQuantity, strings.TrimSpace(in.Reason), actor.Performer(), now)
	})
}

// ReverseIssueMovement revierte una salida: devuelve la cantidad al artículo, agrega
// una entrada compensatoria y marca la salida como revertida, en una sola transacción.
func (uc *LedgerUseCase) ReverseIssueMovement(ctx context.Context, actor ports.Actor, movementID, idempotencyKey string) (*dto.StockOperationResponse, error) {
	if movementID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *dto.StockOperationResponse
	err := ports.Once(ctx, uc.guard, scopedKey("reverse", movementID, idempotencyKey), func() error {
		return uc.tx.RunLedger(ctx, func(itemRepo repository.StockItemRepository, movRepo repository.StockMovementRepository, _ repository.WorkOrderRepository) error {
			mov, err := movRepo.GetForUpdate(ctx, movementID)
			if err != nil {
				return err
			}
			if mov == nil {
				return domain.ErrNotFound
			}
			if err := ledger.CanReverse(mov); err != nil {
				return err
			}
			item, err := itemRepo.GetForUpdate(ctx, mov.StockItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			now := uc.now()
			entry, err := ledger.Reverse(item, mov, actor.Performer(), now)
			if err != nil {
				return err
			}
			if err := movRepo.MarkReversed(ctx, mov); err != nil {
				return err
			}
			res, err := uc.persist(ctx, itemRepo, movRepo, item, entry, now)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("movement", movementID).
		Str("code", result.Item.Code).
		Str("restored", result.Movement.Quantity.String()).
		Str("by", actor.Performer()).
		Msg("salida revertida")
	return result, nil
}

// ListStockMovements movimientos filtrados, más recientes primero, con tope configurado.
func (uc *LedgerUseCase) ListStockMovements(ctx context.Context, q dto.StockMovementQuery) ([]dto.StockMovementResponse, error) {
	filter, err := uc.movementFilter(q)
	if err != nil {
		return nil, err
	}
	list, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toMovementViewResponse(v))
	}
	return out, nil
}

// ExportStockMovements escribe en w los mismos movimientos que ListStockMovements.
func (uc *LedgerUseCase) ExportStockMovements(ctx context.Context, q dto.StockMovementQuery, w io.Writer) error {
	if uc.exporter == nil {
		return fmt.Errorf("exportador de movimientos no configurado")
	}
	rows, err := uc.ListStockMovements(ctx, q)
	if err != nil {
		return err
	}
	return uc.exporter.WriteMovements(w, rows)
}

// ExportContentType tipo MIME del archivo exportado.
func (uc *LedgerUseCase) ExportContentType() string {
	if uc.exporter == nil {
		return "application/octet-stream"
	}
	return uc.exporter.ContentType()
}

func (uc *LedgerUseCase) movementFilter(q dto.StockMovementQuery) (entity.StockMovementFilter, error) {
	f := entity.StockMovementFilter{
		StockItemID: strings.TrimSpace(q.StockItemID),
		WorkOrderID: strings.TrimSpace(q.WorkOrderID),
		Action:      strings.ToUpper(strings.TrimSpace(q.Action)),
		Limit:       uc.movementLimit,
	}
	switch f.Action {
	case "", entity.MovementIssue, entity.MovementAdd, entity.MovementAdjust:
	default:
		return f, domain.ErrInvalidInput
	}
	if q.From != "" {
		t, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return f, domain.ErrInvalidInput
		}
		f.From = &t
	}
	if q.To != "" {
		t, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return f, domain.ErrInvalidInput
		}
		// "to" inclusivo: hasta el final del día.
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, domain.ErrInvalidInput
	}
	return f, nil
}

type ledgerFn func(woRepo repository.WorkOrderRepository, item *entity.StockItem, now time.Time) (ledger.Entry, error)

// apply patrón común de issue/add/adjust: idempotencia, transacción, FOR UPDATE y persistencia.
func (uc *LedgerUseCase) apply(ctx context.Context, op, itemID, idempotencyKey string, fn ledgerFn) (*dto.StockOperationResponse, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *dto.StockOperationResponse
	err := ports.Once(ctx, uc.guard, scopedKey(op, itemID, idempotencyKey), func() error {
		return uc.tx.RunLedger(ctx, func(itemRepo repository.StockItemRepository, movRepo repository.StockMovementRepository, woRepo repository.WorkOrderRepository) error {
			item, err := itemRepo.GetForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			now := uc.now()
			entry, err := fn(woRepo, item, now)
			if err != nil {
				return err
			}
			res, err := uc.persist(ctx, itemRepo, movRepo, item, entry, now)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("op", op).
		Str("code", result.Item.Code).
		Str("delta", result.Movement.Quantity.String()).
		Str("quantity", result.Item.Quantity.String()).
		Str("by", result.Movement.PerformedBy).
		Msg("movimiento de stock")
	return result, nil
}

func (uc *LedgerUseCase) persist(
	ctx context.Context,
	itemRepo repository.StockItemRepository,
	movRepo repository.StockMovementRepository,
	item *entity.StockItem,
	entry ledger.Entry,
	now time.Time,
) (*dto.StockOperationResponse, error) {
	item.Quantity = entry.NewQuantity
	item.UpdatedAt = now
	if err := itemRepo.UpdateQuantity(ctx, item); err != nil {
		return nil, err
	}
	entry.Movement.ID = uuid.New().String()
	if err := movRepo.Create(ctx, entry.Movement); err != nil {
		return nil, err
	}
	return &dto.StockOperationResponse{
		Item:     toStockItemResponse(item),
		Movement: toMovementResponse(entry.Movement),
	}, nil
}

// scopedKey la misma clave sobre otro artículo o movimiento es otra operación.
func scopedKey(op, target, key string) string {
	if key == "" {
		return ""
	}
	return "idem:stock:" + op + ":" + target + ":" + key
}
