package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
)

func TestBalance_SumaFirmada(t *testing.T) {
	entries := []*entity.LedgerEntry{
		{ID: "1", Type: entity.EntryReceipt, Direction: entity.DirectionIn, Quantity: d("100")},
		{ID: "2", Type: entity.EntryReceipt, Direction: entity.DirectionIn, Quantity: d("50")},
		{ID: "3", Type: entity.EntryIssue, Direction: entity.DirectionOut, Quantity: d("20.5")},
		{ID: "4", Type: entity.EntryStatusMove, Direction: entity.DirectionOut, Quantity: d("9.5")},
	}
	assert.Equal(t, "120", inventory.Balance(entries).String())
	assert.Equal(t, "20", inventory.BalanceWithout(entries, "1").String())
}

func TestBalance_SinMovimientosEsCero(t *testing.T) {
	assert.True(t, inventory.Balance(nil).IsZero())
}

func TestTolerancia(t *testing.T) {
	assert.False(t, inventory.IsPositive(d("0.0000000001")))
	assert.True(t, inventory.Exceeds(d("10.001"), d("10")))
	assert.False(t, inventory.Exceeds(d("10.0000000001"), d("10")))
	assert.Equal(t, "10", inventory.ClampToAvailable(d("10.0000000001"), d("10")).String())
	assert.Equal(t, "9.5", inventory.ClampToAvailable(d("9.5"), d("10")).String())
}

func TestIsNegative_SinTolerancia(t *testing.T) {
	assert.True(t, inventory.IsNegative(d("-0.0000000001")), "cualquier saldo bajo cero es negativo")
	assert.False(t, inventory.IsNegative(d("0")))
}

func TestValidateQty(t *testing.T) {
	cases := []struct {
		name string
		qty  string
		msg  string
	}{
		{"cero", "0", "qty must be greater than zero"},
		{"negativa", "-1", "qty must be greater than zero"},
		{"siete decimales", "0.0000001", "qty supports at most 6 decimal places, got 0.0000001"},
		{"seis decimales", "0.000001", ""},
		{"ceros a la derecha", "1.50000000", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.ValidateQty("qty", d(tc.qty))
			if tc.msg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tc.msg, domain.Message(err))
		})
	}
}
