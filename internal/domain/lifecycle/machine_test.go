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

var t0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newOrder(marking, coating bool) *entity.WorkOrder {
	wo := &entity.WorkOrder{
		ID:              "wo-1",
		WorkOrderNo:     "WO-100",
		ToolRef:         "T-7",
		Quantity:        decimal.NewFromInt(50),
		MarkingRequired: marking,
		CoatingRequired: coating,
	}
	wo.Status = lifecycle.DeriveStatus(wo)
	return wo
}

// complete valida y aplica una etapa; falla el test si la tabla la rechaza.
func complete(t *testing.T, wo *entity.WorkOrder, stage, role string, at time.Time) lifecycle.Transition {
	t.Helper()
	tr, err := lifecycle.Plan(wo, stage, role)
	require.NoError(t, err, "etapa %s", stage)
	lifecycle.Apply(wo, tr, "ana", "", at)
	return tr
}

func keys(seq []lifecycle.Stage) []string {
	out := make([]string, 0, len(seq))
	for _, s := range seq {
		out = append(out, s.Key)
	}
	return out
}

func TestSequence_FiltraPorFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags lifecycle.Flags
		want  []string
	}{
		{"sin flags", lifecycle.Flags{}, []string{
			entity.StageFactoryPlanning, entity.StageProductionCompleted,
			entity.StageReadyForDispatch, entity.StageDispatched,
		}},
		{"marcado", lifecycle.Flags{Marking: true}, []string{
			entity.StageFactoryPlanning, entity.StageProductionCompleted, entity.StageMarkingCompleted,
			entity.StageReadyForDispatch, entity.StageDispatched,
		}},
		{"recubrimiento", lifecycle.Flags{Coating: true}, []string{
			entity.StageFactoryPlanning, entity.StageProductionCompleted,
			entity.StageSentToCoating, entity.StageCoatingCompleted,
			entity.StageReadyForDispatch, entity.StageDispatched,
		}},
		{"ambos", lifecycle.Flags{Marking: true, Coating: true}, []string{
			entity.StageFactoryPlanning, entity.StageProductionCompleted, entity.StageMarkingCompleted,
			entity.StageSentToCoating, entity.StageCoatingCompleted,
			entity.StageReadyForDispatch, entity.StageDispatched,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keys(lifecycle.Sequence(tt.flags)))
		})
	}
}

func TestPlan_MarcadoCompletaListoParaDespacho(t *testing.T) {
	wo := newOrder(true, false)
	complete(t, wo, entity.StageFactoryPlanning, entity.RoleManager, t0)
	complete(t, wo, entity.StageProductionCompleted, entity.RoleManager, t0.Add(time.Hour))

	tr := complete(t, wo, entity.StageMarkingCompleted, entity.RoleOperator, t0.Add(2*time.Hour))

	assert.Equal(t, []string{entity.StageReadyForDispatch}, tr.AutoComplete)
	require.True(t, wo.ReadyForDispatch.Done())
	assert.Equal(t, "ana", wo.ReadyForDispatch.By)
	assert.Equal(t, entity.StatusReadyForDispatch, wo.Status)
	assert.Equal(t, entity.StageDispatched, lifecycle.NextStage(wo))
}

func TestPlan_MarcadoConRecubrimiento_NoAutocompleta(t *testing.T) {
	wo := newOrder(true, true)
	complete(t, wo, entity.StageFactoryPlanning, entity.RoleAdmin, t0)
	complete(t, wo, entity.StageProductionCompleted, entity.RoleAdmin, t0)
	tr := complete(t, wo, entity.StageMarkingCompleted, entity.RoleOperator, t0)

	assert.Empty(t, tr.AutoComplete)
	assert.False(t, wo.ReadyForDispatch.Done())
	assert.Equal(t, "Marking Completed", wo.Status)
	assert.Equal(t, entity.StageSentToCoating, lifecycle.NextStage(wo))
}

func TestPlan_Errores(t *testing.T) {
	t.Run("etapa desconocida", func(t *testing.T) {
		_, err := lifecycle.Plan(newOrder(false, false), "painting", entity.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
	t.Run("etapa condicional no aplica", func(t *testing.T) {
		_, err := lifecycle.Plan(newOrder(false, false), entity.StageSentToCoating, entity.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrStageNotApplicable)
	})
	t.Run("operario no planifica", func(t *testing.T) {
		_, err := lifecycle.Plan(newOrder(false, false), entity.StageFactoryPlanning, entity.RoleOperator)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
	t.Run("etapa previa pendiente", func(t *testing.T) {
		_, err := lifecycle.Plan(newOrder(false, false), entity.StageProductionCompleted, entity.RoleManager)
		assert.ErrorIs(t, err, domain.ErrStageLocked)
	})
	t.Run("salto de recubrimiento", func(t *testing.T) {
		wo := newOrder(false, true)
		complete(t, wo, entity.StageFactoryPlanning, entity.RoleManager, t0)
		complete(t, wo, entity.StageProductionCompleted, entity.RoleManager, t0)
		_, err := lifecycle.Plan(wo, entity.StageReadyForDispatch, entity.RoleManager)
		assert.ErrorIs(t, err, domain.ErrStageLocked)
	})
	t.Run("etapa repetida", func(t *testing.T) {
		wo := newOrder(false, false)
		complete(t, wo, entity.StageFactoryPlanning, entity.RoleManager, t0)
		_, err := lifecycle.Plan(wo, entity.StageFactoryPlanning, entity.RoleManager)
		assert.ErrorIs(t, err, domain.ErrStageAlreadyCompleted)
	})
	t.Run("orden despachada", func(t *testing.T) {
		wo := newOrder(false, false)
		for _, s := range []string{entity.StageFactoryPlanning, entity.StageProductionCompleted, entity.StageReadyForDispatch, entity.StageDispatched} {
			complete(t, wo, s, entity.RoleManager, t0)
		}
		assert.Equal(t, entity.StatusDispatched, wo.Status)
		_, err := lifecycle.Plan(wo, entity.StageDispatched, entity.RoleManager)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestApply_EtapasMonotonas(t *testing.T) {
	wo := newOrder(false, true)
	seq := lifecycle.Sequence(lifecycle.FlagsOf(wo))
	for i, s := range seq {
		complete(t, wo, s.Key, entity.RoleAdmin, t0.Add(time.Duration(i)*time.Minute))
		for _, prev := range seq[:i+1] {
			assert.True(t, wo.Mark(prev.Key).Done(), "%s debe seguir completada", prev.Key)
		}
	}
	assert.Equal(t, entity.StageDispatched, lifecycle.CurrentState(wo))
	assert.Empty(t, lifecycle.NextStage(wo))
}

func TestDeriveStatus(t *testing.T) {
	wo := newOrder(false, false)
	assert.Equal(t, entity.StatusPlanningRequired, lifecycle.DeriveStatus(wo))

	complete(t, wo, entity.StageFactoryPlanning, entity.RoleManager, t0)
	assert.Equal(t, "Planning Completed", wo.Status)

	complete(t, wo, entity.StageProductionCompleted, entity.RoleManager, t0.Add(time.Hour))
	assert.Equal(t, "Production Completed", wo.Status)

	require.NoError(t, lifecycle.AcceptQuality(wo, "qc", "", nil, t0.Add(2*time.Hour)))
	assert.Equal(t, entity.StatusQualityDone, wo.Status)

	complete(t, wo, entity.StageReadyForDispatch, entity.RoleManager, t0.Add(3*time.Hour))
	assert.Equal(t, entity.StatusReadyForDispatch, wo.Status)
}

func TestProgress_SeñalaSiguiente(t *testing.T) {
	wo := newOrder(true, false)
	complete(t, wo, entity.StageFactoryPlanning, entity.RoleManager, t0)

	progress := lifecycle.Progress(wo)
	require.Len(t, progress, 5)
	assert.True(t, progress[0].Mark.Done())
	assert.False(t, progress[0].Next)
	assert.True(t, progress[1].Next)
	assert.Equal(t, entity.StageProductionCompleted, progress[1].Key)
}
