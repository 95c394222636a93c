package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/ledger"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func item(qty int64) *entity.StockItem {
	return &entity.StockItem{ID: "item-1", Code: "ST-1", Quantity: decimal.NewFromInt(qty)}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestIssue(t *testing.T) {
	wo := "WO1"
	e, err := ledger.Issue(item(100), d(30), "consumo", &wo, "ana", now)
	require.NoError(t, err)
	assert.True(t, e.NewQuantity.Equal(d(70)))
	assert.Equal(t, entity.MovementIssue, e.Movement.Action)
	assert.True(t, e.Movement.Quantity.Equal(d(-30)))
	require.NotNil(t, e.Movement.WorkOrderID)
	assert.Equal(t, "WO1", *e.Movement.WorkOrderID)
}

func TestIssue_Insuficiente(t *testing.T) {
	it := item(10)
	_, err := ledger.Issue(it, d(11), "", nil, "ana", now)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.True(t, it.Quantity.Equal(d(10)))

	e, err := ledger.Issue(it, d(10), "", nil, "ana", now)
	require.NoError(t, err)
	assert.True(t, e.NewQuantity.IsZero(), "se puede vaciar el stock")
}

func TestCantidadesNoPositivas(t *testing.T) {
	_, err := ledger.Issue(item(10), d(0), "", nil, "ana", now)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = ledger.Add(item(10), d(-5), "", "ana", now)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = ledger.Adjust(item(10), d(-1), "", "ana", now)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAdjust_DeltaConSigno(t *testing.T) {
	e, err := ledger.Adjust(item(40), d(25), "conteo", "ana", now)
	require.NoError(t, err)
	assert.True(t, e.NewQuantity.Equal(d(25)))
	assert.Equal(t, entity.MovementAdjust, e.Movement.Action)
	assert.True(t, e.Movement.Quantity.Equal(d(-15)))
}

func TestReverse(t *testing.T) {
	it := item(100)
	wo := "WO1"
	issue, err := ledger.Issue(it, d(30), "", &wo, "ana", now)
	require.NoError(t, err)
	it.Quantity = issue.NewQuantity
	issue.Movement.ID = "mov-1"

	rev, err := ledger.Reverse(it, issue.Movement, "jefe", now.Add(time.Minute))
	require.NoError(t, err)

	assert.True(t, rev.NewQuantity.Equal(d(100)))
	assert.Equal(t, entity.MovementAdd, rev.Movement.Action)
	assert.True(t, rev.Movement.Quantity.Equal(d(30)))
	require.NotNil(t, rev.Movement.ReversalOf)
	assert.Equal(t, "mov-1", *rev.Movement.ReversalOf)
	assert.True(t, issue.Movement.IsReversed())
	assert.Equal(t, "jefe", issue.Movement.ReversedBy)

	_, err = ledger.Reverse(it, issue.Movement, "jefe", now)
	assert.ErrorIs(t, err, domain.ErrNotReversible, "una salida se revierte una sola vez")
}

func TestReverse_SoloSalidas(t *testing.T) {
	for _, action := range []string{entity.MovementAdd, entity.MovementAdjust} {
		mov := &entity.StockMovement{ID: "m", StockItemID: "item-1", Action: action, Quantity: d(5)}
		_, err := ledger.Reverse(item(5), mov, "jefe", now)
		assert.ErrorIs(t, err, domain.ErrNotReversible, action)
	}
}

// La cantidad del artículo coincide con la suma de deltas tras cualquier secuencia.
func TestBalance_IgualaCantidad(t *testing.T) {
	it := item(0)
	var movs []*entity.StockMovement
	apply := func(e ledger.Entry, err error) {
		require.NoError(t, err)
		it.Quantity = e.NewQuantity
		movs = append(movs, e.Movement)
	}

	apply(ledger.Add(it, d(100), "", "a", now))
	apply(ledger.Issue(it, d(30), "", nil, "a", now))
	apply(ledger.Adjust(it, d(55), "", "a", now))
	apply(ledger.Issue(it, d(5), "", nil, "a", now))
	apply(ledger.Add(it, d(7), "", "a", now))

	assert.True(t, ledger.Balance(movs).Equal(it.Quantity))
	assert.True(t, it.Quantity.Equal(d(57)))

	movs[3].ID = "m4"
	apply(ledger.Reverse(it, movs[3], "a", now))
	assert.True(t, ledger.Balance(movs).Equal(it.Quantity))
	assert.True(t, it.Quantity.Equal(d(62)))
}
