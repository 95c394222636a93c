package lifecycle_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/lifecycle"
)

func producedOrder(t *testing.T) *entity.WorkOrder {
	t.Helper()
	wo := newOrder(false, true)
	wo.Korv = decimal.NewFromFloat(2.5)
	complete(t, wo, entity.StageFactoryPlanning, entity.RoleManager, t0)
	complete(t, wo, entity.StageProductionCompleted, entity.RoleManager, t0.Add(time.Hour))
	return wo
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestRejectQuality_Total(t *testing.T) {
	wo := producedOrder(t)

	spawned, err := lifecycle.RejectQuality(wo, "qc", "grietas", nil, t0.Add(2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, wo.Status)
	assert.Equal(t, entity.QualityRejected, wo.QualityOutcome)
	assert.True(t, wo.Quantity.Equal(decimal.NewFromInt(50)), "la cantidad original no se reduce")
	assert.True(t, wo.IsTerminal())

	assert.Equal(t, "WO-100_r", spawned.WorkOrderNo)
	assert.True(t, spawned.Quantity.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, entity.StatusPlanningRequired, spawned.Status)
	assert.Equal(t, wo.ID, spawned.ParentID)
	assert.Equal(t, wo.ToolRef, spawned.ToolRef)
	assert.True(t, spawned.CoatingRequired)
	assert.True(t, spawned.Korv.Equal(wo.Korv))
	assert.False(t, spawned.FactoryPlanning.Done())
}

func TestRejectQuality_Parcial(t *testing.T) {
	wo := producedOrder(t)

	spawned, err := lifecycle.RejectQuality(wo, "qc", "", dec(20), t0.Add(2*time.Hour))
	require.NoError(t, err)

	assert.True(t, wo.Quantity.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, entity.StatusPlanningRequired, wo.Status)
	assert.True(t, wo.ReplanRequired)
	assert.True(t, spawned.Quantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, wo.Quantity.Add(spawned.Quantity).Equal(decimal.NewFromInt(50)), "no se duplican unidades")

	// Tras re-planificar, la orden retoma su secuencia sin perder marcas.
	assert.Equal(t, entity.StageFactoryPlanning, lifecycle.NextStage(wo))
	_, err = lifecycle.Plan(wo, entity.StageSentToCoating, entity.RoleManager)
	assert.ErrorIs(t, err, domain.ErrStageLocked)

	tr := complete(t, wo, entity.StageFactoryPlanning, entity.RoleManager, t0.Add(3*time.Hour))
	assert.True(t, tr.Replan)
	assert.False(t, wo.ReplanRequired)
	assert.True(t, wo.ProductionCompleted.Done())
	assert.Equal(t, entity.StageSentToCoating, lifecycle.NextStage(wo))
}

func TestRejectQuality_CantidadInvalida(t *testing.T) {
	for _, q := range []int64{0, -1, 51} {
		wo := producedOrder(t)
		_, err := lifecycle.RejectQuality(wo, "qc", "", dec(q), t0)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "cantidad %d", q)
		assert.Empty(t, wo.QualityOutcome)
	}
}

func TestRejectQuality_SinProduccion(t *testing.T) {
	wo := newOrder(false, false)
	_, err := lifecycle.RejectQuality(wo, "qc", "", nil, t0)
	assert.ErrorIs(t, err, domain.ErrStageLocked)
}

func TestAcceptQuality(t *testing.T) {
	t.Run("total", func(t *testing.T) {
		wo := producedOrder(t)
		require.NoError(t, lifecycle.AcceptQuality(wo, "qc", "ok", nil, t0.Add(2*time.Hour)))
		assert.Equal(t, entity.StatusQualityDone, wo.Status)
		assert.Nil(t, wo.QualityPartialQty)

		err := lifecycle.AcceptQuality(wo, "qc", "", nil, t0.Add(3*time.Hour))
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = lifecycle.RejectQuality(wo, "qc", "", nil, t0.Add(3*time.Hour))
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
	t.Run("parcial no divide la orden", func(t *testing.T) {
		wo := producedOrder(t)
		require.NoError(t, lifecycle.AcceptQuality(wo, "qc", "", dec(40), t0.Add(2*time.Hour)))
		assert.Equal(t, entity.StatusPartiallyAccepted, wo.Status)
		require.NotNil(t, wo.QualityPartialQty)
		assert.True(t, wo.QualityPartialQty.Equal(decimal.NewFromInt(40)))
		assert.True(t, wo.Quantity.Equal(decimal.NewFromInt(50)))
	})
	t.Run("parcial fuera de rango", func(t *testing.T) {
		wo := producedOrder(t)
		assert.ErrorIs(t, lifecycle.AcceptQuality(wo, "qc", "", dec(50), t0), domain.ErrInvalidQuantity)
		assert.ErrorIs(t, lifecycle.AcceptQuality(wo, "qc", "", dec(0), t0), domain.ErrInvalidQuantity)
	})
}
