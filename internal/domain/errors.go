package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Son las categorías que la capa HTTP
// traduce a códigos de estado; el mensaje concreto viaja en *Error.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrValidation        = errors.New("validación fallida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrIntegrity         = errors.New("violación de integridad en almacenamiento")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
)

// Error lleva una categoría (Kind) y un mensaje accionable para el caller.
// errors.Is(err, domain.ErrValidation) funciona sobre la categoría.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Is hace que stock insuficiente y entrada inválida también sean errores de validación.
func (e *Error) Is(target error) bool {
	if target == ErrValidation {
		return e.Kind == ErrInsufficientStock || e.Kind == ErrInvalidInput
	}
	return false
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound id de segmento, material o movimiento no resuelto.
func NotFound(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

// Validation regla de negocio incumplida; nunca se escribe nada.
func Validation(format string, args ...any) error { return newError(ErrValidation, format, args...) }

// InsufficientStock salida mayor al saldo del segmento.
func InsufficientStock(format string, args ...any) error {
	return newError(ErrInsufficientStock, format, args...)
}

// Conflict operación concurrente invalidó el estado asumido; el caller debe reintentar.
func Conflict(format string, args ...any) error { return newError(ErrConflict, format, args...) }

// Integrity violación de constraint no prevalidada (p. ej. carrera por unicidad).
func Integrity(format string, args ...any) error { return newError(ErrIntegrity, format, args...) }

// Duplicate el recurso ya existe (p. ej. código de material repetido).
func Duplicate(format string, args ...any) error { return newError(ErrDuplicate, format, args...) }

// Unauthorized no hay actor autenticado.
func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

// Forbidden el actor no tiene el permiso requerido.
func Forbidden(format string, args ...any) error { return newError(ErrForbidden, format, args...) }

// Message devuelve el mensaje accionable de err, o su texto si no es un *Error.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
