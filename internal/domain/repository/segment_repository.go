package repository

import (
	"context"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// SegmentRepository puerto de persistencia de segmentos lote-estado.
// Usado dentro de transacciones; los Get devuelven (nil, nil) si no existe.
type SegmentRepository interface {
	Create(ctx context.Context, segment *entity.Segment) error
	GetByID(ctx context.Context, id string) (*entity.Segment, error)
	// LockLot bloquea y devuelve todos los segmentos de (material, lote), más antiguos primero.
	// Es el único bloqueo de segmentos: toda escritura lo toma antes de tocar filas del lote.
	LockLot(ctx context.Context, materialID, lotNumber string) ([]*entity.Segment, error)
	UpdateStatus(ctx context.Context, id string, status entity.LotStatus) error
	// List ordena por código de material y número de lote.
	List(ctx context.Context, filter SegmentFilter) ([]*entity.Segment, error)
}
