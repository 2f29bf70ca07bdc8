package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// LedgerRepository puerto del libro de movimientos. No hay borrado: solo Append y Update
// (este último exclusivo del editor de movimientos, siempre con su EditRecord).
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error)
	Update(ctx context.Context, entry *entity.LedgerEntry) error
	// ListBySegment en orden cronológico de registro.
	ListBySegment(ctx context.Context, segmentID string) ([]*entity.LedgerEntry, error)
	// Balance Σ(quantity × direction) del segmento, consistente con la transacción en curso.
	Balance(ctx context.Context, segmentID string) (decimal.Decimal, error)
	List(ctx context.Context, filter EntryFilter) ([]*entity.LedgerEntry, error)
}
