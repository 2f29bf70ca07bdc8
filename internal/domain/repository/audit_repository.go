package repository

import (
	"context"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// StatusChangeRepository registros de cambio de estado (solo escritura única).
type StatusChangeRepository interface {
	Create(ctx context.Context, record *entity.StatusChangeRecord) error
	// ListBySegment más recientes primero.
	ListBySegment(ctx context.Context, segmentID string) ([]*entity.StatusChangeRecord, error)
	Latest(ctx context.Context, segmentID string) (*entity.StatusChangeRecord, error)
	List(ctx context.Context, filter AuditFilter) ([]*entity.StatusChangeRecord, error)
}

// EditRecordRepository auditoría de ediciones de movimientos (solo escritura única).
type EditRecordRepository interface {
	Create(ctx context.Context, record *entity.EditRecord) error
	// ListByEntry más recientes primero.
	ListByEntry(ctx context.Context, entryID string) ([]*entity.EditRecord, error)
	List(ctx context.Context, filter AuditFilter) ([]*entity.EditRecord, error)
}
