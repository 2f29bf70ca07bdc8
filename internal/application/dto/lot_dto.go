package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas sin hora (vencimiento, fabricación).
const DateLayout = "2006-01-02"

// SegmentView vista de un segmento lote-estado con su saldo.
type SegmentView struct {
	SegmentID           string          `json:"segment_id"`
	MaterialCode        string          `json:"material_code"`
	MaterialName        string          `json:"material_name"`
	Category            string          `json:"category"`
	Type                string          `json:"type"`
	LotNumber           string          `json:"lot_number"`
	ExpiryDate          *string         `json:"expiry_date"`
	Status              string          `json:"status"`
	Manufacturer        string          `json:"manufacturer"`
	Supplier            string          `json:"supplier"`
	BalanceQty          decimal.Decimal `json:"balance_qty"`
	UomCode             string          `json:"uom_code"`
	LastStatusReason    *string         `json:"last_status_reason"`
	LastStatusChangedAt *time.Time      `json:"last_status_changed_at"`
}

// SegmentQuery filtros de GET /api/lots.
type SegmentQuery struct {
	MaterialCode string `query:"material_code"`
	Search       string `query:"search"`
	IncludeZero  bool   `query:"include_zero"`
	Limit        int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// StatusChangeRequest body para POST /api/lots/:id/status.
// Sin tags de validación: las reglas se evalúan en orden en el dominio.
type StatusChangeRequest struct {
	NewStatus string `json:"new_status"`
	Reason    string `json:"reason"`
	// WholeLot ausente: parcial si llega move_qty, lote completo si no.
	WholeLot *bool `json:"whole_lot"`
	// MoveQty número o texto; se conserva crudo para distinguir ausente de no numérico.
	MoveQty json.RawMessage `json:"move_qty"`
}

// IsWholeLot resuelve whole_lot. Sin el campo, una move_qty enviada indica un cambio parcial:
// nunca se mueve más cantidad de la pedida.
func (r StatusChangeRequest) IsWholeLot() bool {
	if r.WholeLot != nil {
		return *r.WholeLot
	}
	return r.MoveQtyText() == nil
}

// MoveQtyText devuelve move_qty como texto, o nil si no se envió o es null.
func (r StatusChangeRequest) MoveQtyText() *string {
	raw := strings.TrimSpace(string(r.MoveQty))
	if raw == "" || raw == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(r.MoveQty, &s); err == nil {
		return &s
	}
	return &raw
}

// StatusChangeResponse resultado de un cambio de estado: caso aplicado y vistas refrescadas.
type StatusChangeResponse struct {
	Case        string       `json:"case"`
	Source      SegmentView  `json:"source"`
	Destination *SegmentView `json:"destination,omitempty"`
}

// StatusChangeView registro de cambio de estado.
type StatusChangeView struct {
	ID        string    `json:"id"`
	SegmentID string    `json:"segment_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Reason    string    `json:"reason"`
	ChangedAt time.Time `json:"changed_at"`
	ChangedBy string    `json:"changed_by"`
}

// StockSummary indicadores del inventario de lotes.
type StockSummary struct {
	TotalMaterials      int             `json:"total_materials"`
	TotalSegments       int             `json:"total_segments"`
	SegmentsExpiring30d int             `json:"segments_expiring_30d"`
	QuarantineSegments  int             `json:"quarantine_segments"`
	BookValueOnHand     decimal.Decimal `json:"book_value_on_hand"`
}
