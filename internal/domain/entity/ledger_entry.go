package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType tipo de movimiento del libro de lotes.
type EntryType string

// Tipos de movimiento.
const (
	EntryReceipt    EntryType = "RECEIPT"     // entrada de material
	EntryIssue      EntryType = "ISSUE"       // consumo / salida
	EntryStatusMove EntryType = "STATUS_MOVE" // traslado interno entre segmentos del mismo lote
)

// Valid indica si t es un tipo conocido.
func (t EntryType) Valid() bool {
	switch t {
	case EntryReceipt, EntryIssue, EntryStatusMove:
		return true
	}
	return false
}

// Direcciones de un movimiento.
const (
	DirectionIn  = 1
	DirectionOut = -1
)

// ConsumptionUsage subtipo de consumo por defecto de un ISSUE.
const ConsumptionUsage = "USAGE"

// LedgerEntry movimiento firmado, solo de adición, contra un segmento.
// Quantity es siempre una magnitud positiva; el signo lo da Direction.
type LedgerEntry struct {
	ID                     string
	SegmentID              string
	Type                   EntryType
	Direction              int
	Quantity               decimal.Decimal
	UomCode                string
	UnitPrice              *decimal.Decimal
	TotalValue             *decimal.Decimal
	TargetRef              string
	ConsumptionType        string
	ProductBatchNo         string
	ProductManufactureDate *time.Time
	Comment                string
	// StatusAtEntry estado del segmento al registrar un ISSUE; vacío para otros tipos.
	// Ninguna edición lo modifica.
	StatusAtEntry LotStatus
	CreatedAt     time.Time
	CreatedBy     string
}

// Signed cantidad con signo (Quantity * Direction).
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Direction < 0 {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// Clone copia profunda del movimiento.
func (e LedgerEntry) Clone() *LedgerEntry {
	if e.UnitPrice != nil {
		v := *e.UnitPrice
		e.UnitPrice = &v
	}
	if e.TotalValue != nil {
		v := *e.TotalValue
		e.TotalValue = &v
	}
	if e.ProductManufactureDate != nil {
		d := *e.ProductManufactureDate
		e.ProductManufactureDate = &d
	}
	return &e
}
