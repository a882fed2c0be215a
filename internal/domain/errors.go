package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("datos inválidos")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInvalidMotive     = errors.New("motivo inválido para el movimiento")
	ErrProductHasStock   = errors.New("el producto tiene stock en alguna sucursal")
	ErrLockTimeout       = errors.New("tiempo de espera agotado al bloquear el inventario")
)

// StockError detalla un rechazo por stock insuficiente. errors.Is(err, ErrInsufficientStock) es true.
type StockError struct {
	VariantID string
	BranchID  string
	Available int64
	Requested int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// FieldError describe un campo rechazado.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError agrupa los campos rechazados de una operación. errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError crea un error con un único campo.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add registra otro campo rechazado.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil devuelve nil cuando no hay campos rechazados.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFound envuelve ErrNotFound con el tipo de recurso y su id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}
