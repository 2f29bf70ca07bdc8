package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de persistencia del maestro de materiales.
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const materialColumns = `id, code, name, category_code, type_code, base_uom_code, manufacturer, supplier, status, created_at, created_by`

// Create persiste un material nuevo; asigna ID si viene vacío.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `INSERT INTO materials (` + materialColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Code, m.Name, m.CategoryCode, m.TypeCode, m.BaseUomCode,
		m.Manufacturer, m.Supplier, m.Status, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return wrapWriteError("insert material", err)
	}
	return nil
}

func (r *MaterialRepo) scanOne(row pgx.Row, op string) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.CategoryCode, &m.TypeCode, &m.BaseUomCode,
		&m.Manufacturer, &m.Supplier, &m.Status, &m.CreatedAt, &m.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

// GetByID obtiene un material por ID.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get material")
}

// GetByCode obtiene un material por código, sin distinguir mayúsculas.
func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE upper(code) = upper($1)`
	return r.scanOne(r.q.QueryRow(ctx, query, code), "get material by code")
}

// CountActive cuenta los materiales con estado ACTIVE.
func (r *MaterialRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM materials WHERE status = 'ACTIVE'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return n, nil
}
