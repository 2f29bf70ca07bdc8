package inventory

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// Snapshot foto tipada de un movimiento para auditoría de ediciones.
func Snapshot(e *entity.LedgerEntry) entity.EntrySnapshot {
	s := entity.EntrySnapshot{
		Comment:                e.Comment,
		ConsumptionType:        e.ConsumptionType,
		CreatedAt:              e.CreatedAt.UTC().Format(time.RFC3339Nano),
		CreatedBy:              e.CreatedBy,
		Direction:              e.Direction,
		ID:                     e.ID,
		ProductBatchNo:         e.ProductBatchNo,
		ProductManufactureDate: dateText(e.ProductManufactureDate),
		Qty:                    e.Quantity.String(),
		SegmentID:              e.SegmentID,
		TargetRef:              e.TargetRef,
		TotalValue:             decimalText(e.TotalValue),
		TxnType:                string(e.Type),
		UnitPrice:              decimalText(e.UnitPrice),
		UomCode:                e.UomCode,
	}
	if e.StatusAtEntry != "" {
		st := string(e.StatusAtEntry)
		s.StatusAtEntry = &st
	}
	return s
}

// FieldChange valor anterior y nuevo de un campo (nil = null).
type FieldChange struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// Diff campos que difieren entre dos fotos, indexados por su clave JSON.
// Una foto sin cambios produce un mapa vacío.
func Diff(before, after entity.EntrySnapshot) map[string]FieldChange {
	b := snapshotFields(before)
	a := snapshotFields(after)
	out := make(map[string]FieldChange)
	for k, bv := range b {
		av := a[k]
		if !sameJSON(bv, av) {
			out[k] = FieldChange{Before: bv, After: av}
		}
	}
	return out
}

func snapshotFields(s entity.EntrySnapshot) map[string]any {
	raw, err := json.Marshal(s)
	if err != nil {
		return map[string]any{}
	}
	m := make(map[string]any)
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}

func sameJSON(a, b any) bool {
	ra, _ := json.Marshal(a)
	rb, _ := json.Marshal(b)
	return string(ra) == string(rb)
}

func decimalText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func dateText(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
