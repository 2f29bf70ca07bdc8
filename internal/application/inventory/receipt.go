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

// ReceiptUseCase registra entradas de material. Toda entrada cae en el segmento QUARANTINE
// de su (material, lote), que se crea si no existe: el material nuevo siempre pasa por calidad.
type ReceiptUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(txRunner TxRunner, log *logger.Logger) *ReceiptUseCase {
	return &ReceiptUseCase{txRunner: txRunner, log: log.Named("receipts")}
}

// Receive valida la entrada y, en una transacción, bloquea el lote, resuelve o crea el
// segmento en cuarentena y agrega el movimiento RECEIPT.
func (uc *ReceiptUseCase) Receive(ctx context.Context, actor string, in dto.ReceiptRequest) (*dto.LedgerWriteResponse, error) {
	code := entity.NormalizeCode(in.MaterialCode)
	lot := strings.TrimSpace(in.LotNumber)
	if code == "" || lot == "" {
		return nil, domain.Validation("material_code and lot_number are required")
	}
	if err := inventory.ValidateQty("qty", in.Qty); err != nil {
		return nil, err
	}
	if (in.UnitPrice != nil && in.UnitPrice.IsNegative()) || (in.TotalValue != nil && in.TotalValue.IsNegative()) {
		return nil, domain.Validation("unit_price and total_value cannot be negative")
	}
	expiry, err := parseDate("expiry_date", in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	receivedAt, err := parseDate("receipt_date", in.ReceiptDate)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if receivedAt == nil {
		receivedAt = &now
	}

	var out *dto.LedgerWriteResponse
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		mat, err := r.Materials.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if mat == nil {
			return domain.NotFound("material %s not found", code)
		}
		uom, err := resolveUom(in.UomCode, mat)
		if err != nil {
			return err
		}

		// Bloquea los segmentos del lote para que dos entradas simultáneas no creen
		// dos segmentos en cuarentena.
		siblings, err := r.Segments.LockLot(ctx, mat.ID, lot)
		if err != nil {
			return err
		}
		seg := quarantineSegment(siblings)
		if seg == nil {
			seg = &entity.Segment{
				ID:           uuid.New().String(),
				MaterialID:   mat.ID,
				LotNumber:    lot,
				ExpiryDate:   expiry,
				Status:       entity.StatusQuarantine,
				Manufacturer: firstNonEmpty(in.Manufacturer, mat.Manufacturer),
				Supplier:     firstNonEmpty(in.Supplier, mat.Supplier),
				CreatedAt:    now,
				CreatedBy:    actor,
			}
			if err := r.Segments.Create(ctx, seg); err != nil {
				return translateIntegrity(err)
			}
		}

		unit, total := inventory.ReceiptCost(in.Qty, in.UnitPrice, in.TotalValue)
		entry := &entity.LedgerEntry{
			ID:         uuid.New().String(),
			SegmentID:  seg.ID,
			Type:       entity.EntryReceipt,
			Direction:  entity.DirectionIn,
			Quantity:   in.Qty,
			UomCode:    uom,
			UnitPrice:  unit,
			TotalValue: total,
			TargetRef:  strings.TrimSpace(in.TargetRef),
			Comment:    strings.TrimSpace(in.Comment),
			CreatedAt:  *receivedAt,
			CreatedBy:  actor,
		}
		if err := r.Ledger.Append(ctx, entry); err != nil {
			return err
		}
		view, err := segmentView(ctx, r, seg, mat)
		if err != nil {
			return err
		}
		out = &dto.LedgerWriteResponse{Entry: entryView(entry, seg, mat), Segment: view}
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("material_code", code).Str("lot_number", lot).Msg("receipt rejected")
		return nil, err
	}
	uc.log.Info().
		Str("segment_id", out.Segment.SegmentID).
		Str("entry_id", out.Entry.ID).
		Str("qty", in.Qty.String()).
		Str("actor", actor).
		Msg("receipt registered")
	return out, nil
}

// quarantineSegment segmento en cuarentena del lote, si existe.
func quarantineSegment(siblings []*entity.Segment) *entity.Segment {
	for _, s := range siblings {
		if s.NormalizedStatus() == entity.StatusQuarantine {
			return s
		}
	}
	return nil
}

// resolveUom usa la unidad base del material cuando no se envía; otra unidad se rechaza.
func resolveUom(raw string, mat *entity.Material) (string, error) {
	uom := entity.NormalizeCode(raw)
	base := entity.NormalizeCode(mat.BaseUomCode)
	if uom == "" {
		return mat.BaseUomCode, nil
	}
	if uom != base {
		return "", domain.Validation("uom %s does not match material %s base uom %s", uom, mat.Code, mat.BaseUomCode)
	}
	return mat.BaseUomCode, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
