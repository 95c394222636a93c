// Package lifecycle modela el flujo de etapas de una orden de trabajo como una
// máquina de estados explícita: tabla de etapas + tabla de transiciones por flags.
package lifecycle

import (
	"github.com/jhoicas/factory-api/internal/domain/entity"
)

// Condición de inclusión de una etapa en la secuencia de la orden.
type condition int

const (
	always condition = iota
	whenMarking
	whenCoating
)

// Stage definición estática de una etapa.
type Stage struct {
	Key   string
	Label string
	Roles []string
	cond  condition
}

// Flags atributos de la orden que filtran la secuencia.
type Flags struct {
	Marking bool
	Coating bool
}

// FlagsOf extrae los flags de una orden.
func FlagsOf(wo *entity.WorkOrder) Flags {
	return Flags{Marking: wo.MarkingRequired, Coating: wo.CoatingRequired}
}

var managers = []string{entity.RoleManager, entity.RoleAdmin}

var stages = []Stage{
	{Key: entity.StageFactoryPlanning, Label: "Planning Completed", Roles: managers, cond: always},
	{Key: entity.StageProductionCompleted, Label: "Production Completed", Roles: managers, cond: always},
	{Key: entity.StageMarkingCompleted, Label: "Marking Completed", Roles: []string{entity.RoleOperator, entity.RoleManager, entity.RoleAdmin}, cond: whenMarking},
	{Key: entity.StageSentToCoating, Label: "Sent to Coating", Roles: managers, cond: whenCoating},
	{Key: entity.StageCoatingCompleted, Label: "Coating Completed", Roles: managers, cond: whenCoating},
	{Key: entity.StageReadyForDispatch, Label: entity.StatusReadyForDispatch, Roles: managers, cond: always},
	{Key: entity.StageDispatched, Label: entity.StatusDispatched, Roles: managers, cond: always},
}

// Stages devuelve todas las etapas definidas, en orden.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// Lookup busca la definición de una etapa por clave.
func Lookup(key string) (Stage, bool) {
	for _, s := range stages {
		if s.Key == key {
			return s, true
		}
	}
	return Stage{}, false
}

// Applies indica si la etapa forma parte de la secuencia para esos flags.
func (s Stage) Applies(f Flags) bool {
	switch s.cond {
	case whenMarking:
		return f.Marking
	case whenCoating:
		return f.Coating
	}
	return true
}

// Allows indica si el rol puede completar la etapa.
func (s Stage) Allows(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Sequence secuencia filtrada de etapas para los flags dados.
func Sequence(f Flags) []Stage {
	seq := make([]Stage, 0, len(stages))
	for _, s := range stages {
		if s.Applies(f) {
			seq = append(seq, s)
		}
	}
	return seq
}

// Label etiqueta de estado para una clave de etapa.
func Label(key string) string {
	if s, ok := Lookup(key); ok {
		return s.Label
	}
	return ""
}
