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

// EditAuthorizer decide si el actor puede editar un movimiento del tipo dado.
// Devuelve un error Forbidden cuando no puede.
type EditAuthorizer func(entryType entity.EntryType) error

// EditTransactionUseCase corrige movimientos históricos in situ. Cada corrección deja
// exactamente un EditRecord con las fotos antes/después y el motivo.
type EditTransactionUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewEditTransactionUseCase construye el caso de uso.
func NewEditTransactionUseCase(txRunner TxRunner, log *logger.Logger) *EditTransactionUseCase {
	return &EditTransactionUseCase{txRunner: txRunner, log: log.Named("transaction_edit")}
}

// Edit aplica los campos presentes de in al movimiento entryID.
// authorize puede ser nil (sin restricción por tipo).
func (uc *EditTransactionUseCase) Edit(ctx context.Context, actor, entryID string, in dto.EditEntryRequest, authorize EditAuthorizer) (*dto.EditResponse, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Validation("reason is required")
	}
	now := time.Now().UTC()

	var out *dto.EditResponse
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		entry, err := r.Ledger.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.NotFound("transaction %s not found", entryID)
		}
		if entry.Type == entity.EntryStatusMove {
			return domain.Validation("status move entries cannot be edited; use a status change instead")
		}
		if authorize != nil {
			if err := authorize(entry.Type); err != nil {
				return err
			}
		}

		// Bloquea el lote: ninguna salida concurrente puede consumir el saldo que se valida.
		seg, _, err := lockSegment(ctx, r, entry.SegmentID)
		if err != nil {
			return err
		}
		if seg == nil {
			return domain.NotFound("segment %s not found", entry.SegmentID)
		}
		// Se relee tras el bloqueo para validar contra el estado confirmado.
		if entry, err = r.Ledger.GetByID(ctx, entryID); err != nil {
			return err
		}
		if entry == nil {
			return domain.NotFound("transaction %s not found", entryID)
		}
		history, err := r.Ledger.ListBySegment(ctx, seg.ID)
		if err != nil {
			return err
		}

		before := inventory.Snapshot(entry)
		updated := entry.Clone()
		if err := applyEdit(updated, in); err != nil {
			return err
		}

		without := inventory.BalanceWithout(history, entry.ID)
		resulting := without.Add(updated.Signed())
		if inventory.IsNegative(resulting) {
			return domain.Validation("edit would drive segment balance negative (balance without entry %s, resulting %s)",
				without, resulting)
		}

		switch updated.Type {
		case entity.EntryIssue:
			updated.UnitPrice, updated.TotalValue = inventory.RecostIssue(updated, history)
		case entity.EntryReceipt:
			if updated.UnitPrice != nil {
				updated.UnitPrice, updated.TotalValue = inventory.ReceiptCost(updated.Quantity, updated.UnitPrice, nil)
			}
		}

		after := inventory.Snapshot(updated)
		if len(inventory.Diff(before, after)) == 0 {
			return domain.Validation("no changes to apply")
		}
		if err := r.Ledger.Update(ctx, updated); err != nil {
			return err
		}
		rec := &entity.EditRecord{
			ID:       uuid.New().String(),
			EntryID:  updated.ID,
			Reason:   reason,
			Before:   before,
			After:    after,
			EditedAt: now,
			EditedBy: actor,
		}
		if err := r.Edits.Create(ctx, rec); err != nil {
			return err
		}
		mat, err := newMaterialCache(r).get(ctx, seg.MaterialID)
		if err != nil {
			return err
		}
		out = &dto.EditResponse{Entry: entryView(updated, seg, mat), Edit: editRecordView(rec)}
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("entry_id", entryID).Msg("transaction edit rejected")
		return nil, err
	}
	uc.log.Info().
		Str("entry_id", entryID).
		Str("edit_id", out.Edit.ID).
		Int("changed_fields", len(out.Edit.Changes)).
		Str("actor", actor).
		Msg("transaction edited")
	return out, nil
}

// applyEdit copia en e los campos presentes. StatusAtEntry nunca se toca.
func applyEdit(e *entity.LedgerEntry, in dto.EditEntryRequest) error {
	if in.Qty != nil {
		if err := inventory.ValidateQty("qty", *in.Qty); err != nil {
			return err
		}
		e.Quantity = *in.Qty
	}
	if in.TargetRef != nil {
		e.TargetRef = strings.TrimSpace(*in.TargetRef)
	}
	if in.Comment != nil {
		e.Comment = strings.TrimSpace(*in.Comment)
	}
	if in.ProductBatchNo != nil {
		e.ProductBatchNo = strings.TrimSpace(*in.ProductBatchNo)
	}
	if in.ConsumptionType != nil {
		if e.Type != entity.EntryIssue {
			return domain.Validation("consumption_type applies only to issues")
		}
		ct := entity.NormalizeCode(*in.ConsumptionType)
		if ct == "" {
			ct = entity.ConsumptionUsage
		}
		e.ConsumptionType = ct
	}
	if in.ProductManufactureDate != nil {
		d, err := parseDate("product_manufacture_date", *in.ProductManufactureDate)
		if err != nil {
			return err
		}
		e.ProductManufactureDate = d
	}
	if in.EntryDate != nil {
		d, err := parseDate("entry_date", *in.EntryDate)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.Validation("entry_date cannot be empty")
		}
		e.CreatedAt = *d
	}
	return nil
}
