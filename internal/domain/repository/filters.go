package repository

import (
	"time"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// SegmentFilter criterios de listado de segmentos. Campos vacíos no filtran.
type SegmentFilter struct {
	MaterialID string
	// Search coincidencia parcial, sin distinguir mayúsculas, sobre el número de lote.
	Search string
	Limit  int
}

// EntryFilter criterios de listado de movimientos (más recientes primero).
type EntryFilter struct {
	SegmentID string
	Type      entity.EntryType
	Limit     int
}

// AuditFilter criterios de los registros de auditoría (cambios de estado y ediciones).
// From es inclusivo y Until exclusivo.
type AuditFilter struct {
	From  *time.Time
	Until *time.Time
	Actor string
	Limit int
}

// Matches indica si un evento (instante y actor) cumple el filtro.
func (f AuditFilter) Matches(at time.Time, actor string) bool {
	if f.From != nil && at.Before(*f.From) {
		return false
	}
	if f.Until != nil && !at.Before(*f.Until) {
		return false
	}
	return f.Actor == "" || f.Actor == actor
}
