package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func receipt(qty string, unit, total *decimal.Decimal) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		Type: entity.EntryReceipt, Direction: entity.DirectionIn,
		Quantity: d(qty), UnitPrice: unit, TotalValue: total,
	}
}

// ─── Redondeo ──────────────────────────────────────────────────────────────────

func TestRounding_MitadSeAlejaDeCero(t *testing.T) {
	assert.Equal(t, "2.13", inventory.RoundTotalValue(d("2.125")).String())
	assert.Equal(t, "-2.13", inventory.RoundTotalValue(d("-2.125")).String())
	assert.Equal(t, "0.0001", inventory.RoundUnitPrice(d("0.00005")).String())
	// el sesgo corrige residuos binarios de valores que llegaron como float
	assert.Equal(t, "1.01", inventory.RoundTotalValue(decimal.NewFromFloat(1.005)).String())
}

// ─── Promedio ponderado ────────────────────────────────────────────────────────

func TestCostCalculator_PromedioPonderadoDeEntradas(t *testing.T) {
	history := []*entity.LedgerEntry{
		receipt("100", nil, dp("200.00")),
		receipt("50", nil, dp("125.00")),
	}
	unit := inventory.CostCalculator(history)
	require.NotNil(t, unit)
	assert.Equal(t, "2.1667", unit.String())
}

func TestCostCalculator_EntradaSinTotalUsaPrecioPorCantidad(t *testing.T) {
	history := []*entity.LedgerEntry{
		receipt("10", dp("3"), nil),
		receipt("10", nil, dp("50")),
	}
	assert.Equal(t, "4", inventory.CostCalculator(history).String())
}

func TestCostCalculator_EntradaSinCostoSumaSoloCantidad(t *testing.T) {
	history := []*entity.LedgerEntry{
		receipt("10", nil, dp("100")),
		receipt("10", nil, nil),
	}
	assert.Equal(t, "5", inventory.CostCalculator(history).String())
}

func TestCostCalculator_IgnoraMovimientosQueNoSonEntradas(t *testing.T) {
	history := []*entity.LedgerEntry{
		receipt("10", nil, dp("20")),
		{Type: entity.EntryStatusMove, Direction: entity.DirectionIn, Quantity: d("90")},
		{Type: entity.EntryIssue, Direction: entity.DirectionOut, Quantity: d("5"), TotalValue: dp("999")},
	}
	assert.Equal(t, "2", inventory.CostCalculator(history).String())
}

func TestCostCalculator_SinEntradasDevuelveNil(t *testing.T) {
	assert.Nil(t, inventory.CostCalculator(nil))
}

// ─── Costo de salidas ──────────────────────────────────────────────────────────

func TestIssueCost_Prioridades(t *testing.T) {
	history := []*entity.LedgerEntry{receipt("100", nil, dp("200"))}

	unit, total := inventory.IssueCost(d("3"), dp("9.99"), dp("10"), history)
	assert.Equal(t, "3.3333", unit.String(), "el total del caller gana")
	assert.Equal(t, "10", total.String())

	unit, total = inventory.IssueCost(d("3"), dp("1.5"), nil, history)
	assert.Equal(t, "1.5", unit.String())
	assert.Equal(t, "4.5", total.String())

	unit, total = inventory.IssueCost(d("3"), nil, nil, history)
	assert.Equal(t, "2", unit.String())
	assert.Equal(t, "6", total.String())
}

func TestIssueCost_SinHistorialQuedaNulo(t *testing.T) {
	unit, total := inventory.IssueCost(d("3"), nil, nil, nil)
	assert.Nil(t, unit)
	assert.Nil(t, total)
}

func TestRecostIssue_ConservaPrecioRegistrado(t *testing.T) {
	history := []*entity.LedgerEntry{receipt("10", nil, dp("100"))}
	e := &entity.LedgerEntry{Type: entity.EntryIssue, Quantity: d("4"), UnitPrice: dp("7.25")}

	unit, total := inventory.RecostIssue(e, history)
	assert.Equal(t, "7.25", unit.String())
	assert.Equal(t, "29", total.String())

	e.UnitPrice = nil
	unit, total = inventory.RecostIssue(e, history)
	assert.Equal(t, "10", unit.String())
	assert.Equal(t, "40", total.String())
}

func TestReceiptCost_DerivaTotalDelPrecio(t *testing.T) {
	unit, total := inventory.ReceiptCost(d("3"), dp("1.23456"), nil)
	assert.Equal(t, "1.2346", unit.String())
	assert.Equal(t, "3.7", total.String())

	unit, total = inventory.ReceiptCost(d("3"), nil, nil)
	assert.Nil(t, unit)
	assert.Nil(t, total)
}
