package dto

// Límites de listados.
const (
	DefaultLimit = 200
	MaxLimit     = 1000
)

// LimitQuery límite de filas para listados.
type LimitQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// ClampLimit aplica el valor por defecto y el máximo a un límite solicitado.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ListResponse envoltorio de listados con el número de elementos devueltos.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse construye la respuesta; una lista nil se serializa como [].
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
