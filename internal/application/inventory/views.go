package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
)

// materialCache evita releer el mismo material al armar varias vistas.
type materialCache struct {
	repos Repos
	byID  map[string]*entity.Material
}

func newMaterialCache(r Repos) *materialCache {
	return &materialCache{repos: r, byID: map[string]*entity.Material{}}
}

func (c *materialCache) get(ctx context.Context, id string) (*entity.Material, error) {
	if m, ok := c.byID[id]; ok {
		return m, nil
	}
	m, err := c.repos.Materials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("material %s not found", id)
	}
	c.byID[id] = m
	return m, nil
}

// segmentView arma la vista del segmento con su saldo y su último cambio de estado.
func segmentView(ctx context.Context, r Repos, seg *entity.Segment, mat *entity.Material) (dto.SegmentView, error) {
	bal, err := r.Ledger.Balance(ctx, seg.ID)
	if err != nil {
		return dto.SegmentView{}, fmt.Errorf("balance segment %s: %w", seg.ID, err)
	}
	last, err := r.StatusChanges.Latest(ctx, seg.ID)
	if err != nil {
		return dto.SegmentView{}, fmt.Errorf("latest status change %s: %w", seg.ID, err)
	}
	v := dto.SegmentView{
		SegmentID:    seg.ID,
		MaterialCode: mat.Code,
		MaterialName: mat.Name,
		Category:     mat.CategoryCode,
		Type:         mat.TypeCode,
		LotNumber:    seg.LotNumber,
		ExpiryDate:   formatDate(seg.ExpiryDate),
		Status:       string(seg.NormalizedStatus()),
		Manufacturer: seg.Manufacturer,
		Supplier:     seg.Supplier,
		BalanceQty:   bal,
		UomCode:      mat.BaseUomCode,
	}
	if last != nil {
		reason := last.Reason
		at := last.ChangedAt
		v.LastStatusReason = &reason
		v.LastStatusChangedAt = &at
	}
	return v, nil
}

func entryView(e *entity.LedgerEntry, seg *entity.Segment, mat *entity.Material) dto.LedgerEntryView {
	v := dto.LedgerEntryView{
		ID:                     e.ID,
		SegmentID:              e.SegmentID,
		TxnType:                string(e.Type),
		Direction:              e.Direction,
		Qty:                    e.Quantity,
		UomCode:                e.UomCode,
		UnitPrice:              e.UnitPrice,
		TotalValue:             e.TotalValue,
		TargetRef:              e.TargetRef,
		ConsumptionType:        e.ConsumptionType,
		ProductBatchNo:         e.ProductBatchNo,
		ProductManufactureDate: formatDate(e.ProductManufactureDate),
		Comment:                e.Comment,
		CreatedAt:              e.CreatedAt,
		CreatedBy:              e.CreatedBy,
	}
	if e.Type == entity.EntryIssue {
		v.StatusAtEntry = string(e.StatusAtEntry)
	}
	if seg != nil {
		v.LotNumber = seg.LotNumber
	}
	if mat != nil {
		v.MaterialCode = mat.Code
	}
	return v
}

func statusChangeView(rec *entity.StatusChangeRecord) dto.StatusChangeView {
	return dto.StatusChangeView{
		ID:        rec.ID,
		SegmentID: rec.SegmentID,
		OldStatus: string(rec.OldStatus),
		NewStatus: string(rec.NewStatus),
		Reason:    rec.Reason,
		ChangedAt: rec.ChangedAt,
		ChangedBy: rec.ChangedBy,
	}
}

func editRecordView(rec *entity.EditRecord) dto.EditRecordView {
	return dto.EditRecordView{
		ID:       rec.ID,
		EntryID:  rec.EntryID,
		Reason:   rec.Reason,
		Before:   rec.Before,
		After:    rec.After,
		Changes:  inventory.Diff(rec.Before, rec.After),
		EditedAt: rec.EditedAt,
		EditedBy: rec.EditedBy,
	}
}

func materialResponse(m *entity.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		CategoryCode: m.CategoryCode,
		TypeCode:     m.TypeCode,
		BaseUomCode:  m.BaseUomCode,
		Manufacturer: m.Manufacturer,
		Supplier:     m.Supplier,
		Status:       m.Status,
		CreatedAt:    m.CreatedAt,
	}
}
