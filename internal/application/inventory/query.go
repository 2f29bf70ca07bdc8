package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

// expiryWindow ventana de vencimiento próximo del resumen.
const expiryWindow = 30 * 24 * time.Hour

// QueryUseCase consultas de saldos, libro y auditoría. Todas corren en una transacción de
// solo lectura: un lector nunca ve un par de STATUS_MOVE a medias.
type QueryUseCase struct {
	txRunner TxRunner
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(txRunner TxRunner) *QueryUseCase {
	return &QueryUseCase{txRunner: txRunner}
}

// ListSegments saldos por segmento ordenados por material y lote. Sin IncludeZero se omiten
// los segmentos con saldo cero.
func (uc *QueryUseCase) ListSegments(ctx context.Context, q dto.SegmentQuery) ([]dto.SegmentView, error) {
	limit := dto.ClampLimit(q.Limit)
	var out []dto.SegmentView
	err := uc.txRunner.View(ctx, func(r Repos) error {
		filter := repository.SegmentFilter{Search: strings.TrimSpace(q.Search)}
		if code := entity.NormalizeCode(q.MaterialCode); code != "" {
			mat, err := r.Materials.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if mat == nil {
				return domain.NotFound("material %s not found", code)
			}
			filter.MaterialID = mat.ID
		}
		segments, err := r.Segments.List(ctx, filter)
		if err != nil {
			return err
		}
		mats := newMaterialCache(r)
		for _, seg := range segments {
			mat, err := mats.get(ctx, seg.MaterialID)
			if err != nil {
				return err
			}
			v, err := segmentView(ctx, r, seg, mat)
			if err != nil {
				return err
			}
			if !q.IncludeZero && !inventory.IsPositive(v.BalanceQty) {
				continue
			}
			out = append(out, v)
			if len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// GetSegment vista de un segmento.
func (uc *QueryUseCase) GetSegment(ctx context.Context, id string) (*dto.SegmentView, error) {
	var out *dto.SegmentView
	err := uc.txRunner.View(ctx, func(r Repos) error {
		seg, err := r.Segments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if seg == nil {
			return domain.NotFound("segment %s not found", id)
		}
		mat, err := newMaterialCache(r).get(ctx, seg.MaterialID)
		if err != nil {
			return err
		}
		v, err := segmentView(ctx, r, seg, mat)
		if err != nil {
			return err
		}
		out = &v
		return nil
	})
	return out, err
}

// ListEntries movimientos más recientes primero, filtrados por segmento y/o tipo.
func (uc *QueryUseCase) ListEntries(ctx context.Context, q dto.EntryQuery) ([]dto.LedgerEntryView, error) {
	filter := repository.EntryFilter{SegmentID: strings.TrimSpace(q.SegmentID), Limit: dto.ClampLimit(q.Limit)}
	if t := strings.TrimSpace(q.Type); t != "" {
		filter.Type = entity.EntryType(entity.NormalizeCode(t))
		if !filter.Type.Valid() {
			return nil, domain.Validation("invalid transaction type %q: must be one of RECEIPT, ISSUE, STATUS_MOVE", t)
		}
	}
	var out []dto.LedgerEntryView
	err := uc.txRunner.View(ctx, func(r Repos) error {
		if filter.SegmentID != "" {
			seg, err := r.Segments.GetByID(ctx, filter.SegmentID)
			if err != nil {
				return err
			}
			if seg == nil {
				return domain.NotFound("segment %s not found", filter.SegmentID)
			}
		}
		entries, err := r.Ledger.List(ctx, filter)
		if err != nil {
			return err
		}
		segs := map[string]*entity.Segment{}
		mats := newMaterialCache(r)
		for _, e := range entries {
			seg, ok := segs[e.SegmentID]
			if !ok {
				if seg, err = r.Segments.GetByID(ctx, e.SegmentID); err != nil {
					return err
				}
				segs[e.SegmentID] = seg
			}
			var mat *entity.Material
			if seg != nil {
				if mat, err = mats.get(ctx, seg.MaterialID); err != nil {
					return err
				}
			}
			out = append(out, entryView(e, seg, mat))
		}
		return nil
	})
	return out, err
}

// ListStatusChanges historial de estados de un segmento, más recientes primero.
func (uc *QueryUseCase) ListStatusChanges(ctx context.Context, segmentID string) ([]dto.StatusChangeView, error) {
	var out []dto.StatusChangeView
	err := uc.txRunner.View(ctx, func(r Repos) error {
		seg, err := r.Segments.GetByID(ctx, segmentID)
		if err != nil {
			return err
		}
		if seg == nil {
			return domain.NotFound("segment %s not found", segmentID)
		}
		recs, err := r.StatusChanges.ListBySegment(ctx, segmentID)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			out = append(out, statusChangeView(rec))
		}
		return nil
	})
	return out, err
}

// ListEdits ediciones de un movimiento, más recientes primero.
func (uc *QueryUseCase) ListEdits(ctx context.Context, entryID string) ([]dto.EditRecordView, error) {
	var out []dto.EditRecordView
	err := uc.txRunner.View(ctx, func(r Repos) error {
		entry, err := r.Ledger.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.NotFound("transaction %s not found", entryID)
		}
		recs, err := r.Edits.ListByEntry(ctx, entryID)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			out = append(out, editRecordView(rec))
		}
		return nil
	})
	return out, err
}

// Summary indicadores del inventario al instante now. El valor en libros es Σ(total_value ×
// direction) sobre todos los movimientos; los movimientos sin valor cuentan como cero.
func (uc *QueryUseCase) Summary(ctx context.Context, now time.Time) (*dto.StockSummary, error) {
	out := &dto.StockSummary{BookValueOnHand: decimal.Zero}
	err := uc.txRunner.View(ctx, func(r Repos) error {
		n, err := r.Materials.CountActive(ctx)
		if err != nil {
			return err
		}
		out.TotalMaterials = n
		segments, err := r.Segments.List(ctx, repository.SegmentFilter{})
		if err != nil {
			return err
		}
		out.TotalSegments = len(segments)
		for _, seg := range segments {
			if seg.NormalizedStatus() == entity.StatusQuarantine {
				out.QuarantineSegments++
			}
			entries, err := r.Ledger.ListBySegment(ctx, seg.ID)
			if err != nil {
				return fmt.Errorf("summary entries %s: %w", seg.ID, err)
			}
			for _, e := range entries {
				if e.TotalValue != nil {
					out.BookValueOnHand = out.BookValueOnHand.Add(e.TotalValue.Mul(decimal.NewFromInt(int64(e.Direction))))
				}
			}
			if seg.IsExpiringWithin(now, expiryWindow) && inventory.IsPositive(inventory.Balance(entries)) {
				out.SegmentsExpiring30d++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AuditFeed feed unificado de cambios de estado y ediciones, más recientes primero.
// from/to aceptan YYYY-MM-DD (día completo) o RFC3339 (inclusivo).
func (uc *QueryUseCase) AuditFeed(ctx context.Context, q dto.AuditQuery) ([]dto.AuditEvent, error) {
	filter := repository.AuditFilter{Actor: strings.TrimSpace(q.Actor), Limit: dto.ClampLimit(q.Limit)}
	var err error
	if filter.From, err = parseBound("from", q.From, false); err != nil {
		return nil, err
	}
	if filter.Until, err = parseBound("to", q.To, true); err != nil {
		return nil, err
	}
	kind := entity.NormalizeCode(q.Kind)

	var events []dto.AuditEvent
	err = uc.txRunner.View(ctx, func(r Repos) error {
		if kind == "" || kind == dto.AuditStatusChange {
			recs, err := r.StatusChanges.List(ctx, filter)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				events = append(events, dto.AuditEvent{
					Kind:    dto.AuditStatusChange,
					ID:      rec.ID,
					RefID:   rec.SegmentID,
					Reason:  rec.Reason,
					Actor:   rec.ChangedBy,
					At:      rec.ChangedAt,
					Summary: fmt.Sprintf("%s -> %s", rec.OldStatus, rec.NewStatus),
					Details: statusChangeView(rec),
				})
			}
		}
		if kind == "" || kind == dto.AuditTransactionEdit {
			recs, err := r.Edits.List(ctx, filter)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				v := editRecordView(rec)
				events = append(events, dto.AuditEvent{
					Kind:    dto.AuditTransactionEdit,
					ID:      rec.ID,
					RefID:   rec.EntryID,
					Reason:  rec.Reason,
					Actor:   rec.EditedBy,
					At:      rec.EditedAt,
					Summary: fmt.Sprintf("%s edited (%d fields)", rec.Before.TxnType, len(v.Changes)),
					Details: v,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].At.After(events[j].At) })
	if len(events) > filter.Limit {
		events = events[:filter.Limit]
	}
	return events, nil
}

// parseBound interpreta un límite del feed. Un día sin hora como límite superior cubre el día completo.
func parseBound(field, raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dto.DateLayout, raw); err == nil {
		if upper {
			t = t.AddDate(0, 0, 1)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Validation("%s must be YYYY-MM-DD or an RFC3339 datetime, got %q", field, raw)
	}
	if upper {
		t = t.Add(time.Nanosecond)
	}
	return &t, nil
}
