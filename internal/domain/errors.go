package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrUsernameExists = errors.New("el usuario ya está registrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")

	// Libro de stock.
	ErrInsufficientQuantity = errors.New("cantidad insuficiente en stock")
	ErrInvalidQuantity      = errors.New("cantidad inválida")
	ErrNotReversible        = errors.New("el movimiento no se puede revertir")

	// Ciclo de vida de órdenes de trabajo.
	ErrStageLocked           = errors.New("la etapa anterior no está completada")
	ErrStageAlreadyCompleted = errors.New("la etapa ya está completada")
	ErrStageNotApplicable    = errors.New("la etapa no aplica a esta orden")

	// Concurrencia e idempotencia.
	ErrVersionConflict  = errors.New("el registro fue modificado por otro usuario")
	ErrDuplicateRequest = errors.New("solicitud ya procesada")
)
