package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var (
	_ repository.StatusChangeRepository = (*StatusChangeRepo)(nil)
	_ repository.EditRecordRepository   = (*EditRecordRepo)(nil)
)

// ─── Cambios de estado ─────────────────────────────────────────────────────────

// StatusChangeRepo registros de lot_status_changes.
type StatusChangeRepo struct {
	q Querier
}

// NewStatusChangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStatusChangeRepository(q Querier) *StatusChangeRepo {
	return &StatusChangeRepo{q: q}
}

const statusChangeColumns = `id, lot_id, old_status, new_status, reason, changed_at, changed_by`

func scanStatusChange(row pgx.Row) (*entity.StatusChangeRecord, error) {
	var (
		rec      entity.StatusChangeRecord
		old, neu string
	)
	if err := row.Scan(&rec.ID, &rec.SegmentID, &old, &neu, &rec.Reason, &rec.ChangedAt, &rec.ChangedBy); err != nil {
		return nil, err
	}
	rec.OldStatus = entity.LotStatus(old)
	rec.NewStatus = entity.LotStatus(neu)
	return &rec, nil
}

func (r *StatusChangeRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.StatusChangeRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.StatusChangeRecord
	for rows.Next() {
		rec, err := scanStatusChange(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Create inserta el registro de cambio de estado.
func (r *StatusChangeRepo) Create(ctx context.Context, rec *entity.StatusChangeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO lot_status_changes (`+statusChangeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.SegmentID, string(rec.OldStatus), string(rec.NewStatus), rec.Reason, rec.ChangedAt, rec.ChangedBy,
	)
	if err != nil {
		return wrapWriteError("insert status change", err)
	}
	return nil
}

// ListBySegment historial de estados del segmento, más recientes primero.
func (r *StatusChangeRepo) ListBySegment(ctx context.Context, segmentID string) ([]*entity.StatusChangeRecord, error) {
	return r.query(ctx, "list status changes",
		`SELECT `+statusChangeColumns+` FROM lot_status_changes WHERE lot_id = $1 ORDER BY changed_at DESC, seq DESC`,
		segmentID)
}

// Latest último cambio de estado del segmento; (nil, nil) si nunca cambió.
func (r *StatusChangeRepo) Latest(ctx context.Context, segmentID string) (*entity.StatusChangeRecord, error) {
	rec, err := scanStatusChange(r.q.QueryRow(ctx,
		`SELECT `+statusChangeColumns+` FROM lot_status_changes WHERE lot_id = $1 ORDER BY changed_at DESC, seq DESC LIMIT 1`,
		segmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest status change: %w", err)
	}
	return rec, nil
}

// List cambios de estado dentro del rango y actor del filtro.
func (r *StatusChangeRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.StatusChangeRecord, error) {
	return r.query(ctx, "list status changes",
		`SELECT `+statusChangeColumns+`
		FROM lot_status_changes
		WHERE ($1::timestamptz IS NULL OR changed_at >= $1)
		  AND ($2::timestamptz IS NULL OR changed_at < $2)
		  AND ($3 = '' OR changed_by = $3)
		ORDER BY changed_at DESC, seq DESC
		LIMIT NULLIF($4, 0)`,
		f.From, f.Until, f.Actor, f.Limit)
}

// ─── Ediciones de movimientos ──────────────────────────────────────────────────

// EditRecordRepo registros de stock_transaction_edits; las fotos antes/después van en JSONB.
type EditRecordRepo struct {
	q Querier
}

// NewEditRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEditRecordRepository(q Querier) *EditRecordRepo {
	return &EditRecordRepo{q: q}
}

const editColumns = `id, transaction_id, reason, before_state, after_state, edited_at, edited_by`

func scanEdit(row pgx.Row) (*entity.EditRecord, error) {
	var (
		rec           entity.EditRecord
		before, after []byte
	)
	if err := row.Scan(&rec.ID, &rec.EntryID, &rec.Reason, &before, &after, &rec.EditedAt, &rec.EditedBy); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(before, &rec.Before); err != nil {
		return nil, fmt.Errorf("decode before_state: %w", err)
	}
	if err := json.Unmarshal(after, &rec.After); err != nil {
		return nil, fmt.Errorf("decode after_state: %w", err)
	}
	return &rec, nil
}

func (r *EditRecordRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.EditRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.EditRecord
	for rows.Next() {
		rec, err := scanEdit(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Create inserta el registro de edición con sus fotos canónicas.
func (r *EditRecordRepo) Create(ctx context.Context, rec *entity.EditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	before, err := rec.Before.Canonical()
	if err != nil {
		return fmt.Errorf("encode before_state: %w", err)
	}
	after, err := rec.After.Canonical()
	if err != nil {
		return fmt.Errorf("encode after_state: %w", err)
	}
	_, err = r.q.Exec(ctx,
		`INSERT INTO stock_transaction_edits (`+editColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.EntryID, rec.Reason, string(before), string(after), rec.EditedAt, rec.EditedBy,
	)
	if err != nil {
		return wrapWriteError("insert transaction edit", err)
	}
	return nil
}

// ListByEntry ediciones del movimiento, más recientes primero.
func (r *EditRecordRepo) ListByEntry(ctx context.Context, entryID string) ([]*entity.EditRecord, error) {
	return r.query(ctx, "list transaction edits",
		`SELECT `+editColumns+` FROM stock_transaction_edits WHERE transaction_id = $1 ORDER BY edited_at DESC, seq DESC`,
		entryID)
}

// List ediciones dentro del rango y actor del filtro.
func (r *EditRecordRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.EditRecord, error) {
	return r.query(ctx, "list transaction edits",
		`SELECT `+editColumns+`
		FROM stock_transaction_edits
		WHERE ($1::timestamptz IS NULL OR edited_at >= $1)
		  AND ($2::timestamptz IS NULL OR edited_at < $2)
		  AND ($3 = '' OR edited_by = $3)
		ORDER BY edited_at DESC, seq DESC
		LIMIT NULLIF($4, 0)`,
		f.From, f.Until, f.Actor, f.Limit)
}
