package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Materials     repository.MaterialRepository
	Segments      repository.SegmentRepository
	Ledger        repository.LedgerRepository
	StatusChanges repository.StatusChangeRepository
	Edits         repository.EditRecordRepository
}

// TxRunner ejecuta una función dentro de una transacción de almacenamiento, pasando repositorios
// atados a esa tx. Run confirma todo o nada; View es de solo lectura y nunca confirma.
// Un error de fn, un pánico o la cancelación de ctx dejan cero escrituras.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
	View(ctx context.Context, fn func(r Repos) error) error
}

// lockSegment bloquea el lote del segmento id y devuelve el segmento releído bajo ese bloqueo,
// junto con todos los segmentos del lote. Toda escritura toma primero el candado de lote y
// después las filas, en el mismo orden; seg es nil si el id no existe.
func lockSegment(ctx context.Context, r Repos, id string) (seg *entity.Segment, siblings []*entity.Segment, err error) {
	unlocked, err := r.Segments.GetByID(ctx, id)
	if err != nil || unlocked == nil {
		return nil, nil, err
	}
	siblings, err = r.Segments.LockLot(ctx, unlocked.MaterialID, unlocked.LotNumber)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range siblings {
		if s.ID == id {
			return s, siblings, nil
		}
	}
	return nil, siblings, nil
}

// translateIntegrity convierte una violación de integridad no prevalidada (p. ej. dos altas
// simultáneas del mismo segmento) en un conflicto que el caller puede reintentar.
func translateIntegrity(err error) error {
	if err == nil {
		return nil
	}
	if isIntegrity(err) {
		return domain.Conflict("concurrent update on the same lot, retry the operation (%s)", domain.Message(err))
	}
	return err
}

func isIntegrity(err error) bool {
	var de *domain.Error
	return errors.As(err, &de) && de.Kind == domain.ErrIntegrity
}
