package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de movimientos (stock_transactions). Sin DELETE: las correcciones
// pasan por Update y quedan auditadas en stock_transaction_edits.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const entryColumns = `id, lot_id, txn_type, direction, qty, uom_code, unit_price, total_value, target_ref,
	consumption_type, product_batch_no, product_manufacture_date, comment, status_at_entry, created_at, created_by`

func scanEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var (
		e             entity.LedgerEntry
		txnType       string
		unitPrice     decimal.NullDecimal
		totalValue    decimal.NullDecimal
		statusAtEntry *string
	)
	if err := row.Scan(&e.ID, &e.SegmentID, &txnType, &e.Direction, &e.Quantity, &e.UomCode,
		&unitPrice, &totalValue, &e.TargetRef, &e.ConsumptionType, &e.ProductBatchNo,
		&e.ProductManufactureDate, &e.Comment, &statusAtEntry, &e.CreatedAt, &e.CreatedBy); err != nil {
		return nil, err
	}
	e.Type = entity.EntryType(txnType)
	e.UnitPrice = nullDecimal(unitPrice)
	e.TotalValue = nullDecimal(totalValue)
	e.StatusAtEntry = entity.LotStatus(fromNullString(statusAtEntry))
	return &e, nil
}

func collectEntries(rows pgx.Rows, op string) ([]*entity.LedgerEntry, error) {
	defer rows.Close()
	var out []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Append registra un movimiento.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `INSERT INTO stock_transactions (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.SegmentID, string(e.Type), e.Direction, e.Quantity, e.UomCode,
		e.UnitPrice, e.TotalValue, e.TargetRef, e.ConsumptionType, e.ProductBatchNo,
		e.ProductManufactureDate, e.Comment, nullString(string(e.StatusAtEntry)), e.CreatedAt, e.CreatedBy,
	)
	if err != nil {
		return wrapWriteError("insert transaction", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	e, err := scanEntry(r.q.QueryRow(ctx, `SELECT `+entryColumns+` FROM stock_transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return e, nil
}

// Update reescribe los campos editables. Segmento, tipo, dirección y status_at_entry no cambian.
func (r *LedgerRepo) Update(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		UPDATE stock_transactions SET
			qty = $2, uom_code = $3, unit_price = $4, total_value = $5, target_ref = $6,
			consumption_type = $7, product_batch_no = $8, product_manufacture_date = $9,
			comment = $10, created_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		e.ID, e.Quantity, e.UomCode, e.UnitPrice, e.TotalValue, e.TargetRef,
		e.ConsumptionType, e.ProductBatchNo, e.ProductManufactureDate, e.Comment, e.CreatedAt,
	)
	if err != nil {
		return wrapWriteError("update transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("transaction %s not found", e.ID)
	}
	return nil
}

// ListBySegment movimientos del segmento en orden cronológico.
func (r *LedgerRepo) ListBySegment(ctx context.Context, segmentID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM stock_transactions WHERE lot_id = $1 ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, segmentID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by segment: %w", err)
	}
	return collectEntries(rows, "list transactions by segment")
}

// Balance saldo del segmento calculado en la base: Σ(qty × direction).
func (r *LedgerRepo) Balance(ctx context.Context, segmentID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(qty * direction), 0) FROM stock_transactions WHERE lot_id = $1`, segmentID,
	).Scan(&bal)
	if err != nil {
		return decimal.Zero, fmt.Errorf("segment balance: %w", err)
	}
	return bal, nil
}

// List movimientos filtrados, más recientes primero.
func (r *LedgerRepo) List(ctx context.Context, f repository.EntryFilter) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM stock_transactions
		WHERE ($1 = '' OR lot_id = $1) AND ($2 = '' OR txn_type = $2)
		ORDER BY created_at DESC, seq DESC
		LIMIT NULLIF($3, 0)`
	rows, err := r.q.Query(ctx, query, f.SegmentID, string(f.Type), f.Limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectEntries(rows, "list transactions")
}
