package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrSameLocation       = errors.New("origen y destino deben ser distintos")
	ErrHeadquartersTaken  = errors.New("la organización ya tiene una sede principal")
	ErrNegativeGrandTotal = errors.New("el total de la factura no puede ser negativo")
	ErrStoreUnavailable   = errors.New("almacén de inventario no disponible")
)
