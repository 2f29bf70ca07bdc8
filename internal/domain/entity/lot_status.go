package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LotStatus estado de calidad de un segmento de lote (conjunto cerrado).
type LotStatus string

// Estados de calidad.
const (
	StatusAvailable  LotStatus = "AVAILABLE"
	StatusQuarantine LotStatus = "QUARANTINE"
	StatusRejected   LotStatus = "REJECTED"

	// statusReleased alias heredado de AVAILABLE; solo puede aparecer en filas antiguas.
	statusReleased LotStatus = "RELEASED"
)

// LotStatuses estados válidos en el orden en que se presentan.
var LotStatuses = []LotStatus{StatusAvailable, StatusQuarantine, StatusRejected}

// Valid indica si s pertenece al conjunto cerrado (sin aliases).
func (s LotStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusQuarantine, StatusRejected:
		return true
	}
	return false
}

// Normalized aplica el mapeo de aliases (RELEASED -> AVAILABLE).
func (s LotStatus) Normalized() LotStatus {
	if s == statusReleased {
		return StatusAvailable
	}
	return s
}

// NormalizeStatus pasa a mayúsculas y resuelve aliases; es el único punto de ingreso
// de cadenas de estado externas. El resultado puede no ser Valid().
func NormalizeStatus(raw string) LotStatus {
	upper := cases.Upper(language.Und).String(strings.TrimSpace(raw))
	return LotStatus(upper).Normalized()
}

// ParseLotStatus normaliza raw y reporta si es un estado válido.
func ParseLotStatus(raw string) (LotStatus, bool) {
	s := NormalizeStatus(raw)
	return s, s.Valid()
}

// NormalizeCode normaliza códigos de material y unidades de medida.
func NormalizeCode(raw string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(raw))
}
