package entity

import (
	"encoding/json"
	"time"
)

// EntrySnapshot foto completa de un LedgerEntry en un momento dado.
// Los campos están declarados en orden alfabético de su clave JSON: json.Marshal produce
// así una serialización con claves ordenadas y dos estados iguales dan bytes idénticos.
// Decimales y fechas viajan como texto para no depender de la representación binaria.
type EntrySnapshot struct {
	Comment                string  `json:"comment"`
	ConsumptionType        string  `json:"consumption_type"`
	CreatedAt              string  `json:"created_at"`
	CreatedBy              string  `json:"created_by"`
	Direction              int     `json:"direction"`
	ID                     string  `json:"id"`
	ProductBatchNo         string  `json:"product_batch_no"`
	ProductManufactureDate *string `json:"product_manufacture_date"`
	Qty                    string  `json:"qty"`
	SegmentID              string  `json:"segment_id"`
	StatusAtEntry          *string `json:"status_at_entry"`
	TargetRef              string  `json:"target_ref"`
	TotalValue             *string `json:"total_value"`
	TxnType                string  `json:"txn_type"`
	UnitPrice              *string `json:"unit_price"`
	UomCode                string  `json:"uom_code"`
}

// Canonical serialización determinista de la foto.
func (s EntrySnapshot) Canonical() ([]byte, error) {
	return json.Marshal(s)
}

// EditRecord auditoría de una edición de movimiento: foto antes/después, motivo y actor.
// Cada mutación de un LedgerEntry produce exactamente un EditRecord.
type EditRecord struct {
	ID       string
	EntryID  string
	Reason   string
	Before   EntrySnapshot
	After    EntrySnapshot
	EditedAt time.Time
	EditedBy string
}
