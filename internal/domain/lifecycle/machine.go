package lifecycle

import (
	"time"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
)

// StateNone estado de una orden sin ninguna etapa completada.
const StateNone = "none"

type transitionKey struct {
	From  string
	Stage string
	Flags Flags
}

// Transition resultado de consultar la tabla: etapa a completar, estado siguiente
// y etapas que se completan como efecto lateral.
type Transition struct {
	From         string
	Stage        string
	Next         string
	AutoComplete []string
	Replan       bool // re-confirmación de planificación tras un rechazo parcial
}

var transitions = buildTransitions()

// buildTransitions genera la tabla (estado actual, etapa, flags) → transición
// para las cuatro combinaciones de flags.
func buildTransitions() map[transitionKey]Transition {
	table := make(map[transitionKey]Transition)
	for _, f := range []Flags{{}, {Marking: true}, {Coating: true}, {Marking: true, Coating: true}} {
		seq := Sequence(f)
		from := StateNone
		for i, s := range seq {
			tr := Transition{From: from, Stage: s.Key, Next: s.Key}
			// Completar marcado deja la orden lista para despacho si no hay recubrimiento pendiente.
			if s.Key == entity.StageMarkingCompleted && i+1 < len(seq) && seq[i+1].Key == entity.StageReadyForDispatch {
				tr.AutoComplete = []string{entity.StageReadyForDispatch}
				tr.Next = entity.StageReadyForDispatch
			}
			table[transitionKey{From: from, Stage: s.Key, Flags: f}] = tr
			from = s.Key
		}
	}
	return table
}

// CurrentState última etapa completada del prefijo contiguo de la secuencia filtrada.
func CurrentState(wo *entity.WorkOrder) string {
	state := StateNone
	for _, s := range Sequence(FlagsOf(wo)) {
		if !wo.Mark(s.Key).Done() {
			break
		}
		state = s.Key
	}
	return state
}

// NextStage primera etapa pendiente de la secuencia filtrada ("" si no queda ninguna
// o si la orden es terminal).
func NextStage(wo *entity.WorkOrder) string {
	if wo.IsTerminal() {
		return ""
	}
	if wo.ReplanRequired {
		return entity.StageFactoryPlanning
	}
	for _, s := range Sequence(FlagsOf(wo)) {
		if !wo.Mark(s.Key).Done() {
			return s.Key
		}
	}
	return ""
}

// Plan valida si role puede completar stage sobre la orden y devuelve la transición.
func Plan(wo *entity.WorkOrder, stage, role string) (Transition, error) {
	def, ok := Lookup(stage)
	if !ok {
		return Transition{}, domain.ErrInvalidInput
	}
	flags := FlagsOf(wo)
	if !def.Applies(flags) {
		return Transition{}, domain.ErrStageNotApplicable
	}
	if !def.Allows(role) {
		return Transition{}, domain.ErrForbidden
	}
	if wo.IsTerminal() {
		return Transition{}, domain.ErrConflict
	}
	current := CurrentState(wo)
	if wo.ReplanRequired {
		if stage != entity.StageFactoryPlanning {
			return Transition{}, domain.ErrStageLocked
		}
		return Transition{From: current, Stage: stage, Next: current, Replan: true}, nil
	}
	if wo.Mark(stage).Done() {
		return Transition{}, domain.ErrStageAlreadyCompleted
	}
	tr, ok := transitions[transitionKey{From: current, Stage: stage, Flags: flags}]
	if !ok {
		return Transition{}, domain.ErrStageLocked
	}
	return tr, nil
}

// Apply aplica una transición ya validada y recalcula el estado desnormalizado.
func Apply(wo *entity.WorkOrder, tr Transition, by, note string, now time.Time) {
	at := now
	*wo.Mark(tr.Stage) = entity.StageMark{At: &at, By: by, Note: note}
	for _, key := range tr.AutoComplete {
		auto := now
		*wo.Mark(key) = entity.StageMark{At: &auto, By: by}
	}
	if tr.Replan {
		wo.ReplanRequired = false
	}
	wo.Status = DeriveStatus(wo)
}

// DeriveStatus calcula la etiqueta de estado a partir de las marcas de la orden.
func DeriveStatus(wo *entity.WorkOrder) string {
	if wo.Dispatched.Done() {
		return entity.StatusDispatched
	}
	if wo.QualityOutcome == entity.QualityRejected {
		return entity.StatusRejected
	}
	if wo.ReplanRequired {
		return entity.StatusPlanningRequired
	}
	state := CurrentState(wo)
	var latest *time.Time
	if state != StateNone {
		latest = wo.Mark(state).At
	}
	if wo.QualityAcceptedAt != nil && (latest == nil || !wo.QualityAcceptedAt.Before(*latest)) {
		if wo.QualityOutcome == entity.QualityPartiallyAccepted {
			return entity.StatusPartiallyAccepted
		}
		return entity.StatusQualityDone
	}
	if state == StateNone {
		return entity.StatusPlanningRequired
	}
	return Label(state)
}

// StageStatus vista de una etapa de la secuencia filtrada para una orden concreta.
type StageStatus struct {
	Key   string
	Label string
	Mark  entity.StageMark
	Next  bool
}

// Progress secuencia filtrada con marcas y la etapa siguiente señalada.
func Progress(wo *entity.WorkOrder) []StageStatus {
	next := NextStage(wo)
	seq := Sequence(FlagsOf(wo))
	out := make([]StageStatus, 0, len(seq))
	for _, s := range seq {
		out = append(out, StageStatus{
			Key:   s.Key,
			Label: s.Label,
			Mark:  *wo.Mark(s.Key),
			Next:  s.Key == next,
		})
	}
	return out
}
