package dto

import (
	"time"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
)

// EditRecordView auditoría de una edición con el diff estructural de sus fotos.
type EditRecordView struct {
	ID       string                           `json:"id"`
	EntryID  string                           `json:"entry_id"`
	Reason   string                           `json:"reason"`
	Before   entity.EntrySnapshot             `json:"before"`
	After    entity.EntrySnapshot             `json:"after"`
	Changes  map[string]inventory.FieldChange `json:"changes"`
	EditedAt time.Time                        `json:"edited_at"`
	EditedBy string                           `json:"edited_by"`
}

// Tipos de evento del feed de auditoría.
const (
	AuditStatusChange    = "STATUS_CHANGE"
	AuditTransactionEdit = "TRANSACTION_EDIT"
)

// AuditEvent elemento del feed unificado de auditoría.
type AuditEvent struct {
	Kind    string    `json:"kind"`
	ID      string    `json:"id"`
	RefID   string    `json:"ref_id"` // segmento o movimiento afectado
	Reason  string    `json:"reason"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
	Summary string    `json:"summary"`
	Details any       `json:"details,omitempty"`
}

// AuditQuery filtros de GET /api/audit/events (fechas RFC3339 o YYYY-MM-DD).
type AuditQuery struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Actor string `query:"actor"`
	Kind  string `query:"kind" validate:"omitempty,oneof=STATUS_CHANGE TRANSACTION_EDIT"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}
