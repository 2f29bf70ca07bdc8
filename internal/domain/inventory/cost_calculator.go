package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// Decimales de redondeo para precios y valores.
const (
	UnitPriceScale  = 4
	TotalValueScale = 2
)

// roundingBias sesgo previo al redondeo; absorbe residuos de cantidades que llegaron como float.
var roundingBias = decimal.New(1, -12)

// roundHalfAway redondea alejándose de cero en el empate, tras sumar el sesgo en la dirección del signo.
func roundHalfAway(d decimal.Decimal, places int32) decimal.Decimal {
	switch d.Sign() {
	case 1:
		d = d.Add(roundingBias)
	case -1:
		d = d.Sub(roundingBias)
	}
	return d.Round(places)
}

// RoundUnitPrice redondea un precio unitario a 4 decimales.
func RoundUnitPrice(d decimal.Decimal) decimal.Decimal { return roundHalfAway(d, UnitPriceScale) }

// RoundTotalValue redondea un valor total a 2 decimales.
func RoundTotalValue(d decimal.Decimal) decimal.Decimal { return roundHalfAway(d, TotalValueScale) }

// receiptValue valor de una entrada: total registrado, o precio*cantidad, o cero si no hay costo.
func receiptValue(e *entity.LedgerEntry) decimal.Decimal {
	switch {
	case e.TotalValue != nil:
		return *e.TotalValue
	case e.UnitPrice != nil:
		return e.UnitPrice.Mul(e.Quantity)
	}
	return decimal.Zero
}

// CostCalculator costo promedio ponderado (servicio de dominio) sobre el historial de entradas:
// PrecioUnitario = Σ(valor de entradas) / Σ(cantidad de entradas).
// Solo se consideran movimientos RECEIPT; una entrada sin costo suma cantidad y no valor.
// Si la cantidad recibida es cero devuelve nil.
func CostCalculator(history []*entity.LedgerEntry) *decimal.Decimal {
	qty := decimal.Zero
	value := decimal.Zero
	for _, e := range history {
		if e.Type != entity.EntryReceipt {
			continue
		}
		qty = qty.Add(e.Quantity)
		value = value.Add(receiptValue(e))
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	unit := RoundUnitPrice(value.Div(qty))
	return &unit
}

// IssueCost costo de una salida en orden de prioridad: total del caller (unit = total/qty),
// precio unitario del caller (total = qty*unit) o promedio ponderado del historial.
// Si no hay base de costo ambos resultados son nil.
func IssueCost(qty decimal.Decimal, unitPrice, totalValue *decimal.Decimal, history []*entity.LedgerEntry) (unit, total *decimal.Decimal) {
	switch {
	case totalValue != nil:
		t := RoundTotalValue(*totalValue)
		total = &t
		if qty.IsPositive() {
			u := RoundUnitPrice(totalValue.Div(qty))
			unit = &u
		}
		return unit, total
	case unitPrice != nil:
		u := RoundUnitPrice(*unitPrice)
		return &u, totalFor(qty, u)
	}
	avg := CostCalculator(history)
	if avg == nil {
		return nil, nil
	}
	return avg, totalFor(qty, *avg)
}

// RecostIssue costo de una salida editada. Un precio unitario ya registrado se conserva
// y solo se recalcula el total con la nueva cantidad; sin precio se recalcula del historial.
func RecostIssue(e *entity.LedgerEntry, history []*entity.LedgerEntry) (unit, total *decimal.Decimal) {
	if e.UnitPrice != nil {
		u := *e.UnitPrice
		return &u, totalFor(e.Quantity, u)
	}
	avg := CostCalculator(history)
	if avg == nil {
		return nil, nil
	}
	return avg, totalFor(e.Quantity, *avg)
}

// ReceiptCost normaliza precio y total de una entrada; el total se deriva del precio si falta.
func ReceiptCost(qty decimal.Decimal, unitPrice, totalValue *decimal.Decimal) (unit, total *decimal.Decimal) {
	if unitPrice != nil {
		u := RoundUnitPrice(*unitPrice)
		unit = &u
	}
	switch {
	case totalValue != nil:
		t := RoundTotalValue(*totalValue)
		total = &t
	case unit != nil:
		total = totalFor(qty, *unit)
	}
	return unit, total
}

func totalFor(qty, unit decimal.Decimal) *decimal.Decimal {
	t := RoundTotalValue(qty.Mul(unit))
	return &t
}
