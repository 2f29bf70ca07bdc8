package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL SERIALIZABLE. Las fallas de
// serialización o deadlock se reintentan completas hasta retries veces.
type TxRunner struct {
	pool    *pgxpool.Pool
	retries int
	log     *logger.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, retries int, log *logger.Logger) *TxRunner {
	if retries < 0 {
		retries = 0
	}
	return &TxRunner{pool: pool, retries: retries, log: log}
}

func reposFor(q Querier) inventory.Repos {
	return inventory.Repos{
		Materials:     NewMaterialRepository(q),
		Segments:      NewSegmentRepository(q),
		Ledger:        NewLedgerRepository(q),
		StatusChanges: NewStatusChangeRepository(q),
		Edits:         NewEditRecordRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	var err error
	for attempt := 0; attempt <= r.retries; attempt++ {
		err = r.runOnce(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		r.log.Warn().Err(err).Int("attempt", attempt+1).Msg("transacción en conflicto, reintentando")
	}
	return domain.Conflict("concurrent update on the same lot, retry the operation (sqlstate %s)", pgCode(err))
}

// View ejecuta fn en una transacción de solo lectura que siempre se revierte.
func (r *TxRunner) View(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	return fn(reposFor(tx))
}

func (r *TxRunner) runOnce(ctx context.Context, opts pgx.TxOptions, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
