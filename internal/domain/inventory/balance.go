package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// Tolerance margen para comparar cantidades (saldo vs. cantidad solicitada).
var Tolerance = decimal.New(1, -9)

// QtyScale decimales admitidos en cantidades; coincide con NUMERIC(20, 6) del esquema.
const QtyScale int32 = 6

// Balance saldo de un segmento: suma de Quantity*Direction de sus movimientos.
// Sin movimientos el saldo es cero.
func Balance(entries []*entity.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Signed())
	}
	return total
}

// BalanceWithout saldo excluyendo el movimiento excludeID (para validar ediciones).
func BalanceWithout(entries []*entity.LedgerEntry, excludeID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.ID == excludeID {
			continue
		}
		total = total.Add(e.Signed())
	}
	return total
}

// ValidateQty exige una cantidad positiva con a lo sumo QtyScale decimales.
func ValidateQty(field string, q decimal.Decimal) error {
	if !q.IsPositive() {
		return domain.Validation("%s must be greater than zero", field)
	}
	if !q.Equal(q.Truncate(QtyScale)) {
		return domain.Validation("%s supports at most %d decimal places, got %s", field, QtyScale, q)
	}
	return nil
}

// IsNegative indica si q es menor que cero. Un saldo nunca puede quedar por debajo de cero.
func IsNegative(q decimal.Decimal) bool {
	return q.IsNegative()
}

// IsPositive indica si q es positivo más allá de la tolerancia.
func IsPositive(q decimal.Decimal) bool {
	return q.GreaterThan(Tolerance)
}

// Exceeds indica si requested supera available más allá de la tolerancia.
func Exceeds(requested, available decimal.Decimal) bool {
	return requested.Sub(available).GreaterThan(Tolerance)
}

// ClampToAvailable ajusta al saldo una cantidad que lo supera dentro de la tolerancia,
// para que la escritura no deje residuos negativos.
func ClampToAvailable(requested, available decimal.Decimal) decimal.Decimal {
	if requested.GreaterThan(available) {
		return available
	}
	return requested
}
