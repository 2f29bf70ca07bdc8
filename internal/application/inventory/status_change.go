package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// StatusChangeUseCase orquesta un cambio de estado: bloquea el lote, planifica la transición
// (MERGE, FLIP o SPLIT) y aplica todas sus escrituras en una sola transacción.
type StatusChangeUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewStatusChangeUseCase construye el orquestador.
func NewStatusChangeUseCase(txRunner TxRunner, log *logger.Logger) *StatusChangeUseCase {
	return &StatusChangeUseCase{txRunner: txRunner, log: log.Named("status_change")}
}

// Change aplica la solicitud sobre el segmento segmentID y devuelve las vistas refrescadas
// del origen y, en MERGE/SPLIT, del destino. Cualquier error deja cero escrituras.
func (uc *StatusChangeUseCase) Change(ctx context.Context, actor, segmentID string, in dto.StatusChangeRequest) (*dto.StatusChangeResponse, error) {
	req := inventory.StatusChangeRequest{
		SegmentID: segmentID,
		NewStatus: in.NewStatus,
		Reason:    in.Reason,
		WholeLot:  in.IsWholeLot(),
		MoveQty:   in.MoveQtyText(),
	}
	now := time.Now().UTC()

	var (
		out  *dto.StatusChangeResponse
		plan *inventory.TransitionPlan
	)
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		pin := inventory.PlanInput{Request: req, Actor: actor, Now: now}

		// Candado de lote antes que cualquier fila: el mismo orden que entradas y salidas.
		src, siblings, err := lockSegment(ctx, r, segmentID)
		if err != nil {
			return err
		}
		var mat *entity.Material
		if src != nil {
			if mat, err = newMaterialCache(r).get(ctx, src.MaterialID); err != nil {
				return err
			}
			if pin.Balance, err = r.Ledger.Balance(ctx, src.ID); err != nil {
				return err
			}
			pin.Source = src
			pin.Siblings = siblings
			pin.UomCode = mat.BaseUomCode
		}

		p, err := inventory.PlanStatusChange(pin)
		if err != nil {
			return err
		}
		if err := apply(ctx, r, p); err != nil {
			return translateIntegrity(err)
		}
		plan = p

		out = &dto.StatusChangeResponse{Case: string(p.Case)}
		srcView, err := segmentView(ctx, r, p.Source, mat)
		if err != nil {
			return err
		}
		if inventory.IsNegative(srcView.BalanceQty) {
			return domain.Conflict("segment %s balance went negative, retry the operation", p.Source.ID)
		}
		out.Source = srcView
		if p.Destination != nil {
			destView, err := segmentView(ctx, r, p.Destination, mat)
			if err != nil {
				return err
			}
			out.Destination = &destView
		}
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("segment_id", segmentID).Str("new_status", in.NewStatus).Msg("status change rejected")
		return nil, err
	}

	ev := uc.log.Info().
		Str("segment_id", segmentID).
		Str("case", string(plan.Case)).
		Str("new_status", string(plan.Target)).
		Str("move_qty", plan.MoveQty.String()).
		Str("actor", actor)
	if plan.Destination != nil {
		ev = ev.Str("destination_id", plan.Destination.ID)
	}
	ev.Msg("status change applied")
	return out, nil
}

// apply escribe el plan. El orden (segmento nuevo, movimientos, estados, registros) respeta las
// claves foráneas; la atomicidad la da la transacción que envuelve la llamada.
func apply(ctx context.Context, r Repos, p *inventory.TransitionPlan) error {
	if p.NewSegment {
		if err := r.Segments.Create(ctx, p.Destination); err != nil {
			return err
		}
	}
	for _, e := range p.Entries {
		if err := r.Ledger.Append(ctx, e); err != nil {
			return err
		}
	}
	if p.FlipStatus {
		if err := r.Segments.UpdateStatus(ctx, p.Source.ID, p.Target); err != nil {
			return err
		}
		p.Source.Status = p.Target
	}
	if p.NormalizeDestination {
		if err := r.Segments.UpdateStatus(ctx, p.Destination.ID, p.Target); err != nil {
			return err
		}
		p.Destination.Status = p.Target
	}
	for _, rec := range p.StatusChanges {
		if err := r.StatusChanges.Create(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
