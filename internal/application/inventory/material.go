package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// Estados del maestro de materiales.
const (
	MaterialActive   = "ACTIVE"
	MaterialInactive = "INACTIVE"
)

// MaterialUseCase consulta del maestro de materiales; el alta existe para carga inicial y pruebas.
type MaterialUseCase struct {
	txRunner TxRunner
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(txRunner TxRunner) *MaterialUseCase {
	return &MaterialUseCase{txRunner: txRunner}
}

// Create da de alta un material con código y unidad normalizados. Código repetido: ErrDuplicate.
func (uc *MaterialUseCase) Create(ctx context.Context, actor string, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	code := entity.NormalizeCode(in.Code)
	uom := entity.NormalizeCode(in.BaseUomCode)
	name := strings.TrimSpace(in.Name)
	if code == "" || uom == "" || name == "" {
		return nil, domain.Validation("code, name and base_uom_code are required")
	}
	m := &entity.Material{
		ID:           uuid.New().String(),
		Code:         code,
		Name:         name,
		CategoryCode: entity.NormalizeCode(in.CategoryCode),
		TypeCode:     entity.NormalizeCode(in.TypeCode),
		BaseUomCode:  uom,
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		Supplier:     strings.TrimSpace(in.Supplier),
		Status:       MaterialActive,
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    actor,
	}
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		existing, err := r.Materials.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Duplicate("material %s already exists", code)
		}
		if err := r.Materials.Create(ctx, m); err != nil {
			if isIntegrity(err) {
				return domain.Duplicate("material %s already exists", code)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return materialResponse(m), nil
}

// GetByCode material por código (normalizado).
func (uc *MaterialUseCase) GetByCode(ctx context.Context, code string) (*dto.MaterialResponse, error) {
	code = entity.NormalizeCode(code)
	var out *dto.MaterialResponse
	err := uc.txRunner.View(ctx, func(r Repos) error {
		m, err := r.Materials.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFound("material %s not found", code)
		}
		out = materialResponse(m)
		return nil
	})
	return out, err
}
