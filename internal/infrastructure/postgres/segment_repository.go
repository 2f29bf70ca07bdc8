package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.SegmentRepository = (*SegmentRepo)(nil)

// SegmentRepo segmentos lote-estado en la tabla material_lots.
type SegmentRepo struct {
	q Querier
}

// NewSegmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSegmentRepository(q Querier) *SegmentRepo {
	return &SegmentRepo{q: q}
}

const segmentColumns = `l.id, l.material_id, l.lot_number, l.expiry_date, l.status, l.manufacturer, l.supplier, l.created_at, l.created_by`

func scanSegment(row pgx.Row) (*entity.Segment, error) {
	var (
		s      entity.Segment
		status string
	)
	if err := row.Scan(&s.ID, &s.MaterialID, &s.LotNumber, &s.ExpiryDate, &status,
		&s.Manufacturer, &s.Supplier, &s.CreatedAt, &s.CreatedBy); err != nil {
		return nil, err
	}
	s.Status = entity.LotStatus(status)
	return &s, nil
}

func collectSegments(rows pgx.Rows, op string) ([]*entity.Segment, error) {
	defer rows.Close()
	var out []*entity.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Create inserta un segmento; el índice único sobre el estado normalizado rechaza duplicados.
func (r *SegmentRepo) Create(ctx context.Context, s *entity.Segment) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `
		INSERT INTO material_lots (id, material_id, lot_number, expiry_date, status, manufacturer, supplier, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.MaterialID, s.LotNumber, s.ExpiryDate, string(s.Status),
		s.Manufacturer, s.Supplier, s.CreatedAt, s.CreatedBy,
	)
	if err != nil {
		return wrapWriteError("insert segment", err)
	}
	return nil
}

func (r *SegmentRepo) getOne(ctx context.Context, query, op string, args ...any) (*entity.Segment, error) {
	s, err := scanSegment(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// GetByID obtiene un segmento por ID.
func (r *SegmentRepo) GetByID(ctx context.Context, id string) (*entity.Segment, error) {
	return r.getOne(ctx, `SELECT `+segmentColumns+` FROM material_lots l WHERE l.id = $1`, "get segment", id)
}

// LockLot toma un candado transaccional sobre (material, lote), que cubre también segmentos
// aún no creados, y bloquea las filas existentes, más antiguas primero.
func (r *SegmentRepo) LockLot(ctx context.Context, materialID, lotNumber string) ([]*entity.Segment, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))`, materialID, lotNumber); err != nil {
		return nil, fmt.Errorf("lock lot: %w", err)
	}
	query := `
		SELECT ` + segmentColumns + `
		FROM material_lots l
		WHERE l.material_id = $1 AND l.lot_number = $2
		ORDER BY l.created_at, l.id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, materialID, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("lock lot: %w", err)
	}
	return collectSegments(rows, "lock lot")
}

// UpdateStatus cambia el estado de un segmento.
func (r *SegmentRepo) UpdateStatus(ctx context.Context, id string, status entity.LotStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE material_lots SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return wrapWriteError("update segment status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("segment %s not found", id)
	}
	return nil
}

// List segmentos ordenados por código de material y número de lote.
func (r *SegmentRepo) List(ctx context.Context, f repository.SegmentFilter) ([]*entity.Segment, error) {
	query := `
		SELECT ` + segmentColumns + `
		FROM material_lots l
		JOIN materials m ON m.id = l.material_id
		WHERE ($1 = '' OR l.material_id = $1)
		  AND ($2 = '' OR l.lot_number ILIKE '%' || $2 || '%')
		ORDER BY m.code, l.lot_number, l.created_at, l.id
		LIMIT NULLIF($3, 0)`
	rows, err := r.q.Query(ctx, query, f.MaterialID, f.Search, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return collectSegments(rows, "list segments")
}
