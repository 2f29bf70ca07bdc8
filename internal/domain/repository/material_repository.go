package repository

import (
	"context"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// MaterialRepository puerto de consulta del maestro de materiales. Los métodos Get devuelven
// (nil, nil) cuando el registro no existe.
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetByCode(ctx context.Context, code string) (*entity.Material, error)
	// CountActive número de materiales con estado ACTIVE.
	CountActive(ctx context.Context) (int, error)
}
