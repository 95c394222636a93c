package workorder

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/application/ports"
	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/lifecycle"
	"github.com/jhoicas/factory-api/internal/domain/repository"
	"github.com/jhoicas/factory-api/pkg/logger"
)

// LifecycleUseCase avanza órdenes de trabajo por sus etapas y registra la inspección
// de calidad. Cada operación lee la orden con SELECT FOR UPDATE, valida contra la tabla
// de transiciones y escribe marcas + estado derivado en la misma transacción.
type LifecycleUseCase struct {
	tx     TxRunner
	repo   repository.WorkOrderRepository
	locker ports.Locker
	guard  ports.IdempotencyGuard
	log    *logger.Logger
	now    func() time.Time
}

// NewLifecycleUseCase construye el caso de uso. locker y guard pueden ser nil (sin Redis).
func NewLifecycleUseCase(
	tx TxRunner,
	repo repository.WorkOrderRepository,
	locker ports.Locker,
	guard ports.IdempotencyGuard,
	log *logger.Logger,
) *LifecycleUseCase {
	if locker == nil {
		locker = ports.NoopLocker{}
	}
	if guard == nil {
		guard = ports.NoopGuard{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LifecycleUseCase{
		tx:     tx,
		repo:   repo,
		locker: locker,
		guard:  guard,
		log:    log.Component("workorder"),
		now:    time.Now,
	}
}

// Create da de alta una orden en "Planning Required".
func (uc *LifecycleUseCase) Create(ctx context.Context, actor ports.Actor, in dto.CreateWorkOrderRequest) (*dto.WorkOrderResponse, error) {
	if actor.Role != entity.RoleManager && actor.Role != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	no := strings.TrimSpace(in.WorkOrderNo)
	if no == "" || strings.TrimSpace(in.ToolRef) == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Quantity.IsPositive() || in.Korv.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	now := uc.now()
	wo := &entity.WorkOrder{
		ID:              uuid.New().String(),
		WorkOrderNo:     no,
		ToolRef:         strings.TrimSpace(in.ToolRef),
		Quantity:        in.Quantity,
		Korv:            in.Korv,
		MarkingRequired: in.MarkingRequired,
		CoatingRequired: in.CoatingRequired,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	wo.Status = lifecycle.DeriveStatus(wo)

	err := uc.tx.RunWorkOrders(ctx, func(repo repository.WorkOrderRepository) error {
		exists, err := repo.ExistsNo(ctx, no)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicate
		}
		return repo.Create(ctx, wo)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("work_order", wo.WorkOrderNo).Str("by", actor.Performer()).Msg("orden creada")
	return toWorkOrderResponse(wo), nil
}

// Get devuelve la orden con su progreso. ErrNotFound si no existe.
func (uc *LifecycleUseCase) Get(ctx context.Context, id string) (*dto.WorkOrderResponse, error) {
	wo, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, domain.ErrNotFound
	}
	return toWorkOrderResponse(wo), nil
}

// List lista órdenes para el tablero, más recientes primero.
func (uc *LifecycleUseCase) List(ctx context.Context, status, search string, page dto.PageRequest) (*dto.WorkOrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, entity.WorkOrderFilter{
		Status: status,
		Search: strings.TrimSpace(search),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.WorkOrderResponse, 0, len(list))
	for _, wo := range list {
		items = append(items, *toWorkOrderResponse(wo))
	}
	return &dto.WorkOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// CompleteStage completa una etapa. El rol se valida aquí además de en el router:
// el acceso directo a la API no puede saltarse la tabla de permisos por etapa.
func (uc *LifecycleUseCase) CompleteStage(ctx context.Context, actor ports.Actor, id, stage string, in dto.CompleteStageRequest) (*dto.WorkOrderResponse, error) {
	var out *entity.WorkOrder
	var tr lifecycle.Transition
	err := uc.mutate(ctx, id, in.ExpectedVersion, func(repo repository.WorkOrderRepository, wo *entity.WorkOrder, now time.Time) error {
		var err error
		tr, err = lifecycle.Plan(wo, stage, actor.Role)
		if err != nil {
			return err
		}
		lifecycle.Apply(wo, tr, actor.Performer(), strings.TrimSpace(in.Note), now)
		wo.UpdatedAt = now
		if err := repo.Update(ctx, wo); err != nil {
			return err
		}
		out = wo
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("work_order", out.WorkOrderNo).
		Str("stage", stage).
		Strs("auto", tr.AutoComplete).
		Str("status", out.Status).
		Str("by", actor.Performer()).
		Msg("etapa completada")
	return toWorkOrderResponse(out), nil
}

// AcceptQuality registra la aceptación (total o parcial) de calidad.
func (uc *LifecycleUseCase) AcceptQuality(ctx context.Context, actor ports.Actor, id string, in dto.AcceptQualityRequest) (*dto.WorkOrderResponse, error) {
	var out *entity.WorkOrder
	err := uc.mutate(ctx, id, in.ExpectedVersion, func(repo repository.WorkOrderRepository, wo *entity.WorkOrder, now time.Time) error {
		if err := lifecycle.AcceptQuality(wo, actor.Performer(), strings.TrimSpace(in.Note), in.PartialQty, now); err != nil {
			return err
		}
		wo.UpdatedAt = now
		if err := repo.Update(ctx, wo); err != nil {
			return err
		}
		out = wo
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("work_order", out.WorkOrderNo).Str("status", out.Status).Str("by", actor.Performer()).Msg("calidad aceptada")
	return toWorkOrderResponse(out), nil
}

// RejectQuality separa la cantidad rechazada en una orden "_r" y reduce o cierra la original,
// todo en una transacción. idempotencyKey evita duplicar la orden si el cliente reintenta.
func (uc *LifecycleUseCase) RejectQuality(ctx context.Context, actor ports.Actor, id, idempotencyKey string, in dto.RejectQualityRequest) (*dto.RejectQualityResponse, error) {
	var original, spawned *entity.WorkOrder
	err := ports.Once(ctx, uc.guard, scopedKey("reject", id, idempotencyKey), func() error {
		return uc.mutate(ctx, id, in.ExpectedVersion, func(repo repository.WorkOrderRepository, wo *entity.WorkOrder, now time.Time) error {
			created, err := lifecycle.RejectQuality(wo, actor.Performer(), strings.TrimSpace(in.Note), in.RejectedQty, now)
			if err != nil {
				return err
			}
			no, err := uniqueNo(ctx, repo, created.WorkOrderNo)
			if err != nil {
				return err
			}
			created.ID = uuid.New().String()
			created.WorkOrderNo = no
			created.Version = 1
			if err := repo.Create(ctx, created); err != nil {
				return err
			}
			wo.UpdatedAt = now
			if err := repo.Update(ctx, wo); err != nil {
				return err
			}
			original, spawned = wo, created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("work_order", original.WorkOrderNo).
		Str("rejected_order", spawned.WorkOrderNo).
		Str("rejected_qty", spawned.Quantity.String()).
		Str("status", original.Status).
		Str("by", actor.Performer()).
		Msg("calidad rechazada")
	return &dto.RejectQualityResponse{
		Original: *toWorkOrderResponse(original),
		Rejected: *toWorkOrderResponse(spawned),
	}, nil
}

// mutate bloquea la orden (Redis si está configurado, y FOR UPDATE en la transacción),
// verifica la versión esperada y ejecuta fn.
func (uc *LifecycleUseCase) mutate(
	ctx context.Context,
	id string,
	expectedVersion *int64,
	fn func(repo repository.WorkOrderRepository, wo *entity.WorkOrder, now time.Time) error,
) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	unlock, err := uc.locker.Lock(ctx, "work_order:"+id)
	if err != nil {
		return err
	}
	defer unlock()

	return uc.tx.RunWorkOrders(ctx, func(repo repository.WorkOrderRepository) error {
		wo, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if wo == nil {
			return domain.ErrNotFound
		}
		if expectedVersion != nil && *expectedVersion != wo.Version {
			return domain.ErrVersionConflict
		}
		return fn(repo, wo, uc.now())
	})
}

// uniqueNo agrega sufijos "_r" hasta encontrar un número libre (rechazos repetidos).
func uniqueNo(ctx context.Context, repo repository.WorkOrderRepository, no string) (string, error) {
	for i := 0; i < 20; i++ {
		exists, err := repo.ExistsNo(ctx, no)
		if err != nil {
			return "", err
		}
		if !exists {
			return no, nil
		}
		no += entity.RejectSuffix
	}
	return "", domain.ErrConflict
}

func scopedKey(op, id, key string) string {
	if key == "" {
		return ""
	}
	return "idem:work_order:" + op + ":" + id + ":" + key
}
