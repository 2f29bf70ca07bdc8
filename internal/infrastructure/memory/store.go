// Package memory implementa el almacenamiento del libro de lotes en memoria, para pruebas y
// ejecuciones locales (DB_DRIVER=memory).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// state contenido completo del almacén. Los valores se guardan por copia.
type state struct {
	materials     map[string]entity.Material
	segments      map[string]entity.Segment
	entries       map[string]entity.LedgerEntry
	entrySeq      map[string]int64
	seq           int64
	statusChanges []entity.StatusChangeRecord
	edits         []entity.EditRecord
}

func newState() *state {
	return &state{
		materials: map[string]entity.Material{},
		segments:  map[string]entity.Segment{},
		entries:   map[string]entity.LedgerEntry{},
		entrySeq:  map[string]int64{},
	}
}

func (s *state) clone() *state {
	c := &state{
		materials:     make(map[string]entity.Material, len(s.materials)),
		segments:      make(map[string]entity.Segment, len(s.segments)),
		entries:       make(map[string]entity.LedgerEntry, len(s.entries)),
		entrySeq:      make(map[string]int64, len(s.entrySeq)),
		seq:           s.seq,
		statusChanges: append([]entity.StatusChangeRecord(nil), s.statusChanges...),
		edits:         append([]entity.EditRecord(nil), s.edits...),
	}
	for k, v := range s.materials {
		c.materials[k] = v
	}
	for k, v := range s.segments {
		c.segments[k] = *v.Clone()
	}
	for k, v := range s.entries {
		c.entries[k] = *v.Clone()
	}
	for k, v := range s.entrySeq {
		c.entrySeq[k] = v
	}
	return c
}

// Store ejecuta cada transacción sobre una copia del estado bajo un único mutex y solo la
// publica si fn termina sin error: las transacciones quedan serializadas y son todo o nada.
type Store struct {
	mu       sync.RWMutex
	state    *state
	onCommit func(Snapshot) error
}

// Option configura el Store.
type Option func(*Store)

// WithCommitHook registra fn para persistir cada estado confirmado. fn corre bajo el candado
// de escritura; si falla, la transacción no se publica.
func WithCommitHook(fn func(Snapshot) error) Option {
	return func(s *Store) { s.onCommit = fn }
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{state: newState()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ejecuta fn con repositorios sobre la copia y la confirma si no hay error ni cancelación.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.state.clone()
	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.onCommit != nil {
		if err := s.onCommit(tx.export()); err != nil {
			return err
		}
	}
	s.state = tx
	return nil
}

// View ejecuta fn sobre una copia de solo lectura; lo que fn escriba se descarta.
func (s *Store) View(ctx context.Context, fn func(r inventory.Repos) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(reposFor(snapshot))
}

func reposFor(st *state) inventory.Repos {
	return inventory.Repos{
		Materials:     &materialRepo{st: st},
		Segments:      &segmentRepo{st: st},
		Ledger:        &ledgerRepo{st: st},
		StatusChanges: &statusChangeRepo{st: st},
		Edits:         &editRepo{st: st},
	}
}
