package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/lot-ledger/internal/domain"
)

func TestError_CategoriaViaErrorsIs(t *testing.T) {
	err := domain.Validation("reason is required")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "reason is required", err.Error())
}

func TestError_StockInsuficienteEsValidacion(t *testing.T) {
	err := domain.InsufficientStock("insufficient stock in lot %s", "L1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestMessage_AtraviesaWrapping(t *testing.T) {
	err := fmt.Errorf("run tx: %w", domain.Conflict("retry"))
	assert.Equal(t, "retry", domain.Message(err))
	assert.Equal(t, "plain", domain.Message(errors.New("plain")))
}
