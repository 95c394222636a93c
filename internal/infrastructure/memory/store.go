// Package memory implementa los repositorios sobre un estado en memoria con transacciones
// por copia: cada transacción trabaja sobre un clon y lo publica solo si el callback no falla.
// Se usa con STORAGE_DRIVER=memory y en los tests de casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/factory-api/internal/application/stock"
	"github.com/jhoicas/factory-api/internal/application/workorder"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

var _ workorder.TxRunner = (*Store)(nil)
var _ stock.TxRunner = (*Store)(nil)

type state struct {
	workOrders map[string]entity.WorkOrder
	items      map[string]entity.StockItem
	movements  map[string]entity.StockMovement
	users      map[string]entity.User
	// seq orden de inserción; desempata created_at iguales en los listados.
	seq     map[string]int64
	nextSeq int64
}

func newState() *state {
	return &state{
		workOrders: map[string]entity.WorkOrder{},
		items:      map[string]entity.StockItem{},
		movements:  map[string]entity.StockMovement{},
		users:      map[string]entity.User{},
		seq:        map[string]int64{},
	}
}

// clone copia los mapas. Las entidades se copian por valor; sus campos puntero
// (*time.Time, *decimal.Decimal, *string) se reemplazan, nunca se mutan en sitio.
func (s *state) clone() *state {
	c := &state{
		workOrders: make(map[string]entity.WorkOrder, len(s.workOrders)),
		items:      make(map[string]entity.StockItem, len(s.items)),
		movements:  make(map[string]entity.StockMovement, len(s.movements)),
		users:      make(map[string]entity.User, len(s.users)),
		seq:        make(map[string]int64, len(s.seq)),
		nextSeq:    s.nextSeq,
	}
	for k, v := range s.workOrders {
		c.workOrders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

func (s *state) touch(id string) {
	if _, ok := s.seq[id]; ok {
		return
	}
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

// Store estado compartido. Las transacciones se serializan con mu, equivalente a
// bloquear con FOR UPDATE todas las filas que tocan.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// access ejecuta fn sobre el estado publicado (operaciones sueltas fuera de transacción).
type access func(write bool, fn func(st *state) error) error

func (s *Store) direct(write bool, fn func(st *state) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.state)
}

func bound(st *state) access {
	return func(_ bool, fn func(st *state) error) error { return fn(st) }
}

func (s *Store) run(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.state.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx
	return nil
}

// RunWorkOrders implementa workorder.TxRunner.
func (s *Store) RunWorkOrders(ctx context.Context, fn func(woRepo repository.WorkOrderRepository) error) error {
	return s.run(ctx, func(st *state) error {
		return fn(&WorkOrderRepo{at: bound(st)})
	})
}

// RunLedger implementa stock.TxRunner.
func (s *Store) RunLedger(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	movRepo repository.StockMovementRepository,
	woRepo repository.WorkOrderRepository,
) error) error {
	return s.run(ctx, func(st *state) error {
		at := bound(st)
		return fn(&StockItemRepo{at: at}, &StockMovementRepo{at: at}, &WorkOrderRepo{at: at})
	})
}

// WorkOrders repositorio de órdenes fuera de transacción.
func (s *Store) WorkOrders() *WorkOrderRepo { return &WorkOrderRepo{at: s.direct} }

// StockItems repositorio de artículos fuera de transacción.
func (s *Store) StockItems() *StockItemRepo { return &StockItemRepo{at: s.direct} }

// StockMovements repositorio de movimientos fuera de transacción.
func (s *Store) StockMovements() *StockMovementRepo { return &StockMovementRepo{at: s.direct} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{at: s.direct} }
