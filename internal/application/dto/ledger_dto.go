package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryView vista de un movimiento del libro de lotes.
type LedgerEntryView struct {
	ID                     string           `json:"id"`
	SegmentID              string           `json:"segment_id"`
	MaterialCode           string           `json:"material_code,omitempty"`
	LotNumber              string           `json:"lot_number,omitempty"`
	TxnType                string           `json:"txn_type"`
	Direction              int              `json:"direction"`
	Qty                    decimal.Decimal  `json:"qty"`
	UomCode                string           `json:"uom_code"`
	UnitPrice              *decimal.Decimal `json:"unit_price"`
	TotalValue             *decimal.Decimal `json:"total_value"`
	TargetRef              string           `json:"target_ref,omitempty"`
	ConsumptionType        string           `json:"consumption_type,omitempty"`
	ProductBatchNo         string           `json:"product_batch_no,omitempty"`
	ProductManufactureDate *string          `json:"product_manufacture_date,omitempty"`
	Comment                string           `json:"comment,omitempty"`
	StatusAtEntry          string           `json:"status_at_entry,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	CreatedBy              string           `json:"created_by"`
}

// EntryQuery filtros de listados de movimientos.
type EntryQuery struct {
	SegmentID string `query:"segment_id"`
	Type      string `query:"type"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// ReceiptRequest body para POST /api/receipts.
type ReceiptRequest struct {
	MaterialCode string           `json:"material_code" validate:"required,max=64"`
	LotNumber    string           `json:"lot_number" validate:"required,max=64"`
	Qty          decimal.Decimal  `json:"qty"`
	UomCode      string           `json:"uom_code" validate:"omitempty,max=16"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	TotalValue   *decimal.Decimal `json:"total_value,omitempty"`
	ExpiryDate   string           `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReceiptDate  string           `json:"receipt_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Manufacturer string           `json:"manufacturer,omitempty" validate:"max=128"`
	Supplier     string           `json:"supplier,omitempty" validate:"max=128"`
	TargetRef    string           `json:"target_ref,omitempty" validate:"max=128"`
	Comment      string           `json:"comment,omitempty" validate:"max=1000"`
}

// IssueRequest body para POST /api/issues. El segmento se indica por segment_id o por
// material_code + lot_number (solo si ese lote tiene un único segmento).
type IssueRequest struct {
	SegmentID              string           `json:"segment_id,omitempty" validate:"omitempty,uuid"`
	MaterialCode           string           `json:"material_code,omitempty" validate:"required_without=SegmentID,max=64"`
	LotNumber              string           `json:"lot_number,omitempty" validate:"required_without=SegmentID,max=64"`
	Qty                    decimal.Decimal  `json:"qty"`
	UomCode                string           `json:"uom_code,omitempty" validate:"omitempty,max=16"`
	ConsumptionType        string           `json:"consumption_type,omitempty" validate:"omitempty,max=32"`
	TargetRef              string           `json:"target_ref,omitempty" validate:"max=128"`
	ProductBatchNo         string           `json:"product_batch_no,omitempty" validate:"max=64"`
	ProductManufactureDate string           `json:"product_manufacture_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Comment                string           `json:"comment,omitempty" validate:"max=1000"`
	UnitPrice              *decimal.Decimal `json:"unit_price,omitempty"`
	TotalValue             *decimal.Decimal `json:"total_value,omitempty"`
}

// LedgerWriteResponse movimiento registrado y vista refrescada de su segmento.
type LedgerWriteResponse struct {
	Entry   LedgerEntryView `json:"entry"`
	Segment SegmentView     `json:"segment"`
}

// EditEntryRequest body para PATCH /api/transactions/:id. Campos ausentes no cambian.
type EditEntryRequest struct {
	Reason                 string           `json:"reason"`
	Qty                    *decimal.Decimal `json:"qty,omitempty"`
	TargetRef              *string          `json:"target_ref,omitempty"`
	Comment                *string          `json:"comment,omitempty"`
	ConsumptionType        *string          `json:"consumption_type,omitempty"`
	ProductBatchNo         *string          `json:"product_batch_no,omitempty"`
	ProductManufactureDate *string          `json:"product_manufacture_date,omitempty"`
	EntryDate              *string          `json:"entry_date,omitempty"`
}

// EditResponse movimiento editado y su registro de auditoría.
type EditResponse struct {
	Entry LedgerEntryView `json:"entry"`
	Edit  EditRecordView  `json:"edit"`
}
