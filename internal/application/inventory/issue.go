package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

// IssueUseCase registra consumos contra un segmento con bloqueo de lote y costo promedio.
type IssueUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewIssueUseCase construye el caso de uso.
func NewIssueUseCase(txRunner TxRunner, log *logger.Logger) *IssueUseCase {
	return &IssueUseCase{txRunner: txRunner, log: log.Named("issues")}
}

// Issue bloquea el lote del segmento, verifica saldo >= cantidad, costea la salida
// según el historial de entradas del segmento y guarda el movimiento con la foto del estado.
func (uc *IssueUseCase) Issue(ctx context.Context, actor string, in dto.IssueRequest) (*dto.LedgerWriteResponse, error) {
	segmentID := strings.TrimSpace(in.SegmentID)
	code := entity.NormalizeCode(in.MaterialCode)
	lot := strings.TrimSpace(in.LotNumber)
	if segmentID == "" && (code == "" || lot == "") {
		return nil, domain.Validation("segment_id or material_code and lot_number are required")
	}
	if err := inventory.ValidateQty("qty", in.Qty); err != nil {
		return nil, err
	}
	if (in.UnitPrice != nil && in.UnitPrice.IsNegative()) || (in.TotalValue != nil && in.TotalValue.IsNegative()) {
		return nil, domain.Validation("unit_price and total_value cannot be negative")
	}
	mfgDate, err := parseDate("product_manufacture_date", in.ProductManufactureDate)
	if err != nil {
		return nil, err
	}
	consumption := entity.NormalizeCode(in.ConsumptionType)
	if consumption == "" {
		consumption = entity.ConsumptionUsage
	}
	now := time.Now().UTC()

	var out *dto.LedgerWriteResponse
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		seg, mat, err := uc.resolveSegment(ctx, r, segmentID, code, lot)
		if err != nil {
			return err
		}
		uom, err := resolveUom(in.UomCode, mat)
		if err != nil {
			return err
		}
		history, err := r.Ledger.ListBySegment(ctx, seg.ID)
		if err != nil {
			return err
		}
		available := inventory.Balance(history)
		if inventory.Exceeds(in.Qty, available) {
			return domain.InsufficientStock("insufficient stock in lot %s (available %s, requested %s)",
				seg.LotNumber, available, in.Qty)
		}
		qty := inventory.ClampToAvailable(in.Qty, available)

		unit, total := inventory.IssueCost(qty, in.UnitPrice, in.TotalValue, history)
		entry := &entity.LedgerEntry{
			ID:                     uuid.New().String(),
			SegmentID:              seg.ID,
			Type:                   entity.EntryIssue,
			Direction:              entity.DirectionOut,
			Quantity:               qty,
			UomCode:                uom,
			UnitPrice:              unit,
			TotalValue:             total,
			TargetRef:              strings.TrimSpace(in.TargetRef),
			ConsumptionType:        consumption,
			ProductBatchNo:         strings.TrimSpace(in.ProductBatchNo),
			ProductManufactureDate: mfgDate,
			Comment:                strings.TrimSpace(in.Comment),
			StatusAtEntry:          seg.NormalizedStatus(),
			CreatedAt:              now,
			CreatedBy:              actor,
		}
		if err := r.Ledger.Append(ctx, entry); err != nil {
			return err
		}
		view, err := segmentView(ctx, r, seg, mat)
		if err != nil {
			return err
		}
		if inventory.IsNegative(view.BalanceQty) {
			return domain.Conflict("segment %s balance went negative, retry the operation", seg.ID)
		}
		out = &dto.LedgerWriteResponse{Entry: entryView(entry, seg, mat), Segment: view}
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("segment_id", segmentID).Str("lot_number", lot).Msg("issue rejected")
		return nil, err
	}
	uc.log.Info().
		Str("segment_id", out.Segment.SegmentID).
		Str("entry_id", out.Entry.ID).
		Str("qty", in.Qty.String()).
		Str("actor", actor).
		Msg("issue registered")
	return out, nil
}

// resolveSegment bloquea el lote y devuelve el segmento indicado por id, o el único segmento
// de (material, lote).
func (uc *IssueUseCase) resolveSegment(ctx context.Context, r Repos, segmentID, code, lot string) (*entity.Segment, *entity.Material, error) {
	if segmentID != "" {
		seg, _, err := lockSegment(ctx, r, segmentID)
		if err != nil {
			return nil, nil, err
		}
		if seg == nil {
			return nil, nil, domain.NotFound("segment %s not found", segmentID)
		}
		mat, err := newMaterialCache(r).get(ctx, seg.MaterialID)
		if err != nil {
			return nil, nil, err
		}
		if code != "" && code != entity.NormalizeCode(mat.Code) {
			return nil, nil, domain.Validation("segment %s does not belong to material %s", segmentID, code)
		}
		return seg, mat, nil
	}

	mat, err := r.Materials.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if mat == nil {
		return nil, nil, domain.NotFound("material %s not found", code)
	}
	segments, err := r.Segments.LockLot(ctx, mat.ID, lot)
	if err != nil {
		return nil, nil, err
	}
	switch len(segments) {
	case 0:
		return nil, nil, domain.NotFound("lot %s not found for material %s", lot, mat.Code)
	case 1:
		return segments[0], mat, nil
	}
	return nil, nil, domain.Validation("multiple lot segments exist for lot %s of material %s; specify segment_id", lot, mat.Code)
}
