package memory

import (
	"sort"

	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

// Snapshot copia exportable del contenido del almacén, usada por los almacenes persistentes
// que guardan el estado completo tras cada transacción confirmada.
type Snapshot struct {
	Materials     []entity.Material           `json:"materials"`
	Segments      []entity.Segment            `json:"segments"`
	Entries       []SequencedEntry            `json:"entries"`
	StatusChanges []entity.StatusChangeRecord `json:"status_changes"`
	Edits         []entity.EditRecord         `json:"edits"`
}

// SequencedEntry movimiento con su número de registro, que desempata el orden cronológico.
type SequencedEntry struct {
	Seq   int64              `json:"seq"`
	Entry entity.LedgerEntry `json:"entry"`
}

func (s *state) export() Snapshot {
	out := Snapshot{
		Materials:     make([]entity.Material, 0, len(s.materials)),
		Segments:      make([]entity.Segment, 0, len(s.segments)),
		Entries:       make([]SequencedEntry, 0, len(s.entries)),
		StatusChanges: append([]entity.StatusChangeRecord(nil), s.statusChanges...),
		Edits:         append([]entity.EditRecord(nil), s.edits...),
	}
	for _, m := range s.materials {
		out.Materials = append(out.Materials, m)
	}
	for _, seg := range s.segments {
		out.Segments = append(out.Segments, *seg.Clone())
	}
	for id, e := range s.entries {
		out.Entries = append(out.Entries, SequencedEntry{Seq: s.entrySeq[id], Entry: *e.Clone()})
	}
	sort.Slice(out.Materials, func(i, j int) bool { return out.Materials[i].ID < out.Materials[j].ID })
	sort.Slice(out.Segments, func(i, j int) bool { return out.Segments[i].ID < out.Segments[j].ID })
	sort.Slice(out.Entries, func(i, j int) bool { return out.Entries[i].Seq < out.Entries[j].Seq })
	return out
}

func stateFrom(snap Snapshot) *state {
	st := newState()
	for _, m := range snap.Materials {
		st.materials[m.ID] = m
	}
	for _, seg := range snap.Segments {
		st.segments[seg.ID] = *seg.Clone()
	}
	for _, se := range snap.Entries {
		st.entries[se.Entry.ID] = *se.Entry.Clone()
		st.entrySeq[se.Entry.ID] = se.Seq
		if se.Seq > st.seq {
			st.seq = se.Seq
		}
	}
	st.statusChanges = append(st.statusChanges, snap.StatusChanges...)
	st.edits = append(st.edits, snap.Edits...)
	return st
}

// Export devuelve una copia del estado confirmado.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.export()
}

// Import reemplaza el estado completo del almacén.
func (s *Store) Import(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFrom(snap)
}
