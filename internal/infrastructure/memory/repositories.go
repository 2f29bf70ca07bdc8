package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/inventory"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
)

var (
	_ repository.MaterialRepository     = (*materialRepo)(nil)
	_ repository.SegmentRepository      = (*segmentRepo)(nil)
	_ repository.LedgerRepository       = (*ledgerRepo)(nil)
	_ repository.StatusChangeRepository = (*statusChangeRepo)(nil)
	_ repository.EditRecordRepository   = (*editRepo)(nil)
)

// ─── Materiales ────────────────────────────────────────────────────────────────

type materialRepo struct{ st *state }

func (r *materialRepo) Create(_ context.Context, m *entity.Material) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	for _, existing := range r.st.materials {
		if strings.EqualFold(existing.Code, m.Code) {
			return domain.Integrity("material code %s already exists", m.Code)
		}
	}
	r.st.materials[m.ID] = *m
	return nil
}

func (r *materialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	m, ok := r.st.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *materialRepo) GetByCode(_ context.Context, code string) (*entity.Material, error) {
	for _, m := range r.st.materials {
		if strings.EqualFold(m.Code, code) {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r *materialRepo) CountActive(_ context.Context) (int, error) {
	n := 0
	for _, m := range r.st.materials {
		if m.Status == "ACTIVE" {
			n++
		}
	}
	return n, nil
}

// ─── Segmentos ─────────────────────────────────────────────────────────────────

type segmentRepo struct{ st *state }

// checkUnique rechaza un segmento que repetiría (material, lote, estado normalizado).
func (r *segmentRepo) checkUnique(s *entity.Segment) error {
	for id, other := range r.st.segments {
		if id == s.ID {
			continue
		}
		if other.SameLot(s) && other.NormalizedStatus() == s.NormalizedStatus() {
			return domain.Integrity("segment for lot %s with status %s already exists", s.LotNumber, s.NormalizedStatus())
		}
	}
	return nil
}

func (r *segmentRepo) Create(_ context.Context, s *entity.Segment) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if _, ok := r.st.segments[s.ID]; ok {
		return domain.Integrity("segment %s already exists", s.ID)
	}
	if err := r.checkUnique(s); err != nil {
		return err
	}
	r.st.segments[s.ID] = *s.Clone()
	return nil
}

func (r *segmentRepo) GetByID(_ context.Context, id string) (*entity.Segment, error) {
	s, ok := r.st.segments[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

// LockLot en memoria el bloqueo lo da el mutex del Store.
func (r *segmentRepo) LockLot(_ context.Context, materialID, lotNumber string) ([]*entity.Segment, error) {
	var out []*entity.Segment
	for _, s := range r.st.segments {
		if s.MaterialID == materialID && s.LotNumber == lotNumber {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *segmentRepo) UpdateStatus(_ context.Context, id string, status entity.LotStatus) error {
	s, ok := r.st.segments[id]
	if !ok {
		return domain.NotFound("segment %s not found", id)
	}
	s.Status = status
	if err := r.checkUnique(&s); err != nil {
		return err
	}
	r.st.segments[id] = s
	return nil
}

func (r *segmentRepo) List(_ context.Context, f repository.SegmentFilter) ([]*entity.Segment, error) {
	search := strings.ToLower(f.Search)
	var out []*entity.Segment
	for _, s := range r.st.segments {
		if f.MaterialID != "" && s.MaterialID != f.MaterialID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.LotNumber), search) {
			continue
		}
		out = append(out, s.Clone())
	}
	codes := make(map[string]string, len(r.st.materials))
	for id, m := range r.st.materials {
		codes[id] = m.Code
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if codes[a.MaterialID] != codes[b.MaterialID] {
			return codes[a.MaterialID] < codes[b.MaterialID]
		}
		if a.LotNumber != b.LotNumber {
			return a.LotNumber < b.LotNumber
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ─── Libro de movimientos ──────────────────────────────────────────────────────

type ledgerRepo struct{ st *state }

func (r *ledgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if _, ok := r.st.segments[e.SegmentID]; !ok {
		return domain.Integrity("segment %s does not exist", e.SegmentID)
	}
	if _, ok := r.st.entries[e.ID]; ok {
		return domain.Integrity("transaction %s already exists", e.ID)
	}
	r.st.seq++
	r.st.entries[e.ID] = *e.Clone()
	r.st.entrySeq[e.ID] = r.st.seq
	return nil
}

func (r *ledgerRepo) GetByID(_ context.Context, id string) (*entity.LedgerEntry, error) {
	e, ok := r.st.entries[id]
	if !ok {
		return nil, nil
	}
	return e.Clone(), nil
}

func (r *ledgerRepo) Update(_ context.Context, e *entity.LedgerEntry) error {
	if _, ok := r.st.entries[e.ID]; !ok {
		return domain.NotFound("transaction %s not found", e.ID)
	}
	r.st.entries[e.ID] = *e.Clone()
	return nil
}

// chronological ordena por fecha del movimiento y luego por orden de registro.
func (r *ledgerRepo) chronological(out []*entity.LedgerEntry) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return r.st.entrySeq[out[i].ID] < r.st.entrySeq[out[j].ID]
	})
}

func (r *ledgerRepo) ListBySegment(_ context.Context, segmentID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.st.entries {
		if e.SegmentID == segmentID {
			out = append(out, e.Clone())
		}
	}
	r.chronological(out)
	return out, nil
}

func (r *ledgerRepo) Balance(ctx context.Context, segmentID string) (decimal.Decimal, error) {
	entries, err := r.ListBySegment(ctx, segmentID)
	if err != nil {
		return decimal.Zero, err
	}
	return inventory.Balance(entries), nil
}

func (r *ledgerRepo) List(_ context.Context, f repository.EntryFilter) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.st.entries {
		if f.SegmentID != "" && e.SegmentID != f.SegmentID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		out = append(out, e.Clone())
	}
	r.chronological(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ─── Auditoría ─────────────────────────────────────────────────────────────────

type statusChangeRepo struct{ st *state }

func (r *statusChangeRepo) Create(_ context.Context, rec *entity.StatusChangeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if _, ok := r.st.segments[rec.SegmentID]; !ok {
		return domain.Integrity("segment %s does not exist", rec.SegmentID)
	}
	r.st.statusChanges = append(r.st.statusChanges, *rec)
	return nil
}

// newestFirst recorre los registros desde el último agregado.
func (r *statusChangeRepo) newestFirst(keep func(entity.StatusChangeRecord) bool, limit int) []*entity.StatusChangeRecord {
	var out []*entity.StatusChangeRecord
	for i := len(r.st.statusChanges) - 1; i >= 0; i-- {
		rec := r.st.statusChanges[i]
		if !keep(rec) {
			continue
		}
		out = append(out, &rec)
	}
	// El límite se aplica después de ordenar: un registro con fecha anterior puede haberse
	// insertado más tarde.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangedAt.After(out[j].ChangedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *statusChangeRepo) ListBySegment(_ context.Context, segmentID string) ([]*entity.StatusChangeRecord, error) {
	return r.newestFirst(func(rec entity.StatusChangeRecord) bool { return rec.SegmentID == segmentID }, 0), nil
}

func (r *statusChangeRepo) Latest(_ context.Context, segmentID string) (*entity.StatusChangeRecord, error) {
	recs := r.newestFirst(func(rec entity.StatusChangeRecord) bool { return rec.SegmentID == segmentID }, 0)
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func (r *statusChangeRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.StatusChangeRecord, error) {
	return r.newestFirst(func(rec entity.StatusChangeRecord) bool { return f.Matches(rec.ChangedAt, rec.ChangedBy) }, f.Limit), nil
}

type editRepo struct{ st *state }

func (r *editRepo) Create(_ context.Context, rec *entity.EditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if _, ok := r.st.entries[rec.EntryID]; !ok {
		return domain.Integrity("transaction %s does not exist", rec.EntryID)
	}
	r.st.edits = append(r.st.edits, *rec)
	return nil
}

func (r *editRepo) newestFirst(keep func(entity.EditRecord) bool, limit int) []*entity.EditRecord {
	var out []*entity.EditRecord
	for i := len(r.st.edits) - 1; i >= 0; i-- {
		rec := r.st.edits[i]
		if !keep(rec) {
			continue
		}
		out = append(out, &rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EditedAt.After(out[j].EditedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *editRepo) ListByEntry(_ context.Context, entryID string) ([]*entity.EditRecord, error) {
	return r.newestFirst(func(rec entity.EditRecord) bool { return rec.EntryID == entryID }, 0), nil
}

func (r *editRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.EditRecord, error) {
	return r.newestFirst(func(rec entity.EditRecord) bool { return f.Matches(rec.EditedAt, rec.EditedBy) }, f.Limit), nil
}
