package workorder_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/application/ports"
	"github.com/jhoicas/factory-api/internal/application/workorder"
	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/infrastructure/memory"
)

var (
	manager  = ports.Actor{UserID: "u-1", Name: "Marta", Role: entity.RoleManager}
	operator = ports.Actor{UserID: "u-2", Name: "Oscar", Role: entity.RoleOperator}
)

type memGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (g *memGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) { return nil, domain.ErrConflict }

func setup(t *testing.T) (*workorder.LifecycleUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := workorder.NewLifecycleUseCase(store, store.WorkOrders(), nil, &memGuard{keys: map[string]bool{}}, nil)
	return uc, store
}

func create(t *testing.T, uc *workorder.LifecycleUseCase, no string, marking, coating bool) *dto.WorkOrderResponse {
	t.Helper()
	wo, err := uc.Create(context.Background(), manager, dto.CreateWorkOrderRequest{
		WorkOrderNo:     no,
		ToolRef:         "T-55",
		Quantity:        decimal.NewFromInt(50),
		Korv:            decimal.NewFromInt(3),
		MarkingRequired: marking,
		CoatingRequired: coating,
	})
	require.NoError(t, err)
	return wo
}

func completeAll(t *testing.T, uc *workorder.LifecycleUseCase, id string, actor ports.Actor, stages ...string) *dto.WorkOrderResponse {
	t.Helper()
	var out *dto.WorkOrderResponse
	for _, s := range stages {
		var err error
		out, err = uc.CompleteStage(context.Background(), actor, id, s, dto.CompleteStageRequest{})
		require.NoError(t, err, s)
	}
	return out
}

func TestCreate(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	wo := create(t, uc, "WO-100", true, false)
	assert.Equal(t, entity.StatusPlanningRequired, wo.Status)
	assert.Equal(t, entity.StageFactoryPlanning, wo.NextStage)
	assert.Equal(t, int64(1), wo.Version)
	assert.Len(t, wo.Stages, 5, "sin recubrimiento no aparecen sus dos etapas")

	_, err := uc.Create(ctx, manager, dto.CreateWorkOrderRequest{WorkOrderNo: "WO-100", ToolRef: "T", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, manager, dto.CreateWorkOrderRequest{WorkOrderNo: "WO-101", ToolRef: "T", Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.Create(ctx, operator, dto.CreateWorkOrderRequest{WorkOrderNo: "WO-102", ToolRef: "T", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCompleteStage_MarcadoAutocompletaListoParaDespacho(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	wo := create(t, uc, "WO-100", true, false)

	completeAll(t, uc, wo.ID, manager, entity.StageFactoryPlanning, entity.StageProductionCompleted)

	out, err := uc.CompleteStage(ctx, operator, wo.ID, entity.StageMarkingCompleted, dto.CompleteStageRequest{Note: "láser"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReadyForDispatch, out.Status)
	assert.Equal(t, entity.StageDispatched, out.NextStage)

	got, err := uc.Get(ctx, wo.ID)
	require.NoError(t, err)
	for _, s := range got.Stages {
		if s.Key == entity.StageMarkingCompleted {
			assert.Equal(t, "Oscar", s.By)
			assert.Equal(t, "láser", s.Note)
		}
		if s.Key == entity.StageReadyForDispatch {
			assert.True(t, s.Completed)
		}
	}
}

func TestCompleteStage_Errores(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	wo := create(t, uc, "WO-200", false, false)

	_, err := uc.CompleteStage(ctx, manager, wo.ID, entity.StageProductionCompleted, dto.CompleteStageRequest{})
	assert.ErrorIs(t, err, domain.ErrStageLocked)

	_, err = uc.CompleteStage(ctx, operator, wo.ID, entity.StageFactoryPlanning, dto.CompleteStageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.CompleteStage(ctx, manager, wo.ID, entity.StageMarkingCompleted, dto.CompleteStageRequest{})
	assert.ErrorIs(t, err, domain.ErrStageNotApplicable)

	_, err = uc.CompleteStage(ctx, manager, "no-existe", entity.StageFactoryPlanning, dto.CompleteStageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	completeAll(t, uc, wo.ID, manager, entity.StageFactoryPlanning)
	_, err = uc.CompleteStage(ctx, manager, wo.ID, entity.StageFactoryPlanning, dto.CompleteStageRequest{})
	assert.ErrorIs(t, err, domain.ErrStageAlreadyCompleted)

	got, err := uc.Get(ctx, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version, "los intentos fallidos no cambian la orden")
}

func TestCompleteStage_VersionEsperada(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	wo := create(t, uc, "WO-300", false, false)

	stale := wo.Version
	completeAll(t, uc, wo.ID, manager, entity.StageFactoryPlanning)

	_, err := uc.CompleteStage(ctx, manager, wo.ID, entity.StageProductionCompleted, dto.CompleteStageRequest{ExpectedVersion: &stale})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestCompleteStage_BloqueoOcupado(t *testing.T) {
	store := memory.NewStore()
	uc := workorder.NewLifecycleUseCase(store, store.WorkOrders(), busyLocker{}, nil, nil)
	wo, err := uc.Create(context.Background(), manager, dto.CreateWorkOrderRequest{WorkOrderNo: "WO-1", ToolRef: "T", Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = uc.CompleteStage(context.Background(), manager, wo.ID, entity.StageFactoryPlanning, dto.CompleteStageRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Dos operarios completan la misma etapa a la vez: exactamente uno gana.
func TestCompleteStage_Concurrente(t *testing.T) {
	uc, _ := setup(t)
	wo := create(t, uc, "WO-400", false, false)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.CompleteStage(context.Background(), manager, wo.ID, entity.StageFactoryPlanning, dto.CompleteStageRequest{})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrStageAlreadyCompleted)
	}
	assert.Equal(t, 1, ok)
}

func TestRejectQuality_Parcial(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	wo := create(t, uc, "WO-500", false, true)
	completeAll(t, uc, wo.ID, manager, entity.StageFactoryPlanning, entity.StageProductionCompleted)

	qty := decimal.NewFromInt(20)
	res, err := uc.RejectQuality(ctx, manager, wo.ID, "key-1", dto.RejectQualityRequest{RejectedQty: &qty, Note: "poros"})
	require.NoError(t, err)

	assert.True(t, res.Original.Quantity.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, entity.StatusPlanningRequired, res.Original.Status)
	assert.Equal(t, entity.StageFactoryPlanning, res.Original.NextStage)
	assert.Equal(t, "WO-500_r", res.Rejected.WorkOrderNo)
	assert.True(t, res.Rejected.Quantity.Equal(qty))
	assert.Equal(t, wo.ID, res.Rejected.ParentID)

	_, err = uc.RejectQuality(ctx, manager, wo.ID, "key-1", dto.RejectQualityRequest{RejectedQty: &qty})
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	list, err := uc.List(ctx, "", "WO-500", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2, "el reintento no crea otra orden")

	// Replanificación y segundo rechazo: el número se desambigua con otro sufijo.
	completeAll(t, uc, wo.ID, manager, entity.StageFactoryPlanning)
	qty = decimal.NewFromInt(5)
	res, err = uc.RejectQuality(ctx, manager, wo.ID, "", dto.RejectQualityRequest{RejectedQty: &qty})
	require.NoError(t, err)
	assert.Equal(t, "WO-500_r_r", res.Rejected.WorkOrderNo)
	assert.True(t, res.Original.Quantity.Equal(decimal.NewFromInt(25)))
}

func TestRejectQuality_Total(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	wo := create(t, uc, "WO-600", false, false)
	completeAll(t, uc, wo.ID, manager, entity.StageFactoryPlanning, entity.StageProductionCompleted)

	res, err := uc.RejectQuality(ctx, manager, wo.ID, "", dto.RejectQualityRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, res.Original.Status)
	assert.Empty(t, res.Original.NextStage)
	assert.True(t, res.Rejected.Quantity.Equal(decimal.NewFromInt(50)))

	_, err = uc.CompleteStage(ctx, manager, wo.ID, entity.StageReadyForDispatch, dto.CompleteStageRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRejectQuality_FallidoLiberaClave(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	wo := create(t, uc, "WO-700", false, false)

	_, err := uc.RejectQuality(ctx, manager, wo.ID, "k", dto.RejectQualityRequest{})
	assert.ErrorIs(t, err, domain.ErrStageLocked)

	completeAll(t, uc, wo.ID, manager, entity.StageFactoryPlanning, entity.StageProductionCompleted)
	_, err = uc.RejectQuality(ctx, manager, wo.ID, "k", dto.RejectQualityRequest{})
	assert.NoError(t, err)
}

func TestRejectQuality_ClavePorOrden(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	a := create(t, uc, "WO-710", false, false)
	b := create(t, uc, "WO-711", false, false)
	completeAll(t, uc, a.ID, manager, entity.StageFactoryPlanning, entity.StageProductionCompleted)
	completeAll(t, uc, b.ID, manager, entity.StageFactoryPlanning, entity.StageProductionCompleted)

	_, err := uc.RejectQuality(ctx, manager, a.ID, "k1", dto.RejectQualityRequest{})
	require.NoError(t, err)
	res, err := uc.RejectQuality(ctx, manager, b.ID, "k1", dto.RejectQualityRequest{})
	require.NoError(t, err)
	assert.Equal(t, "WO-711_r", res.Rejected.WorkOrderNo)
}

func TestAcceptQuality(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	wo := create(t, uc, "WO-800", false, false)
	completeAll(t, uc, wo.ID, manager, entity.StageFactoryPlanning, entity.StageProductionCompleted)

	partial := decimal.NewFromInt(45)
	out, err := uc.AcceptQuality(ctx, manager, wo.ID, dto.AcceptQualityRequest{PartialQty: &partial})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPartiallyAccepted, out.Status)
	require.NotNil(t, out.Quality.PartialQty)
	assert.True(t, out.Quality.PartialQty.Equal(partial))
	assert.Equal(t, "Marta", out.Quality.AcceptedBy)

	_, err = uc.AcceptQuality(ctx, manager, wo.ID, dto.AcceptQualityRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestList_FiltraPorEstado(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	a := create(t, uc, "WO-A", false, false)
	create(t, uc, "WO-B", false, false)
	completeAll(t, uc, a.ID, manager, entity.StageFactoryPlanning)

	list, err := uc.List(ctx, entity.StatusPlanningRequired, "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "WO-B", list.Items[0].WorkOrderNo)
}
