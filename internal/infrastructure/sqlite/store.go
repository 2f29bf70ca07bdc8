// Package sqlite persiste el libro de lotes en un archivo SQLite (DB_DRIVER=sqlite). Las
// transacciones corren sobre el almacén en memoria y el estado confirmado se guarda por
// secciones en la tabla ledger_state antes de publicarse.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // driver SQLite en Go puro

	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/memory"
)

var _ inventory.TxRunner = (*Store)(nil)

// Secciones del estado persistido.
const (
	bucketMaterials     = "materials"
	bucketSegments      = "segments"
	bucketEntries       = "entries"
	bucketStatusChanges = "status_changes"
	bucketEdits         = "edits"
)

// Store almacén en memoria respaldado por SQLite.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

// Open abre (o crea) la base en path y carga el estado guardado.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "lot-ledger.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Un único escritor: el almacén en memoria ya serializa las transacciones.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ledger_state (
		bucket  TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger_state table: %w", err)
	}

	s := &Store{db: db, path: path}
	s.Store = memory.NewStore(memory.WithCommitHook(s.persist))
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close cierra la base.
func (s *Store) Close() error { return s.db.Close() }

// Path ruta del archivo de base de datos.
func (s *Store) Path() string { return s.path }

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM ledger_state`)
	if err != nil {
		return fmt.Errorf("select ledger_state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		snap  memory.Snapshot
		found bool
	)
	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan ledger_state: %w", err)
		}
		var target any
		switch bucket {
		case bucketMaterials:
			target = &snap.Materials
		case bucketSegments:
			target = &snap.Segments
		case bucketEntries:
			target = &snap.Entries
		case bucketStatusChanges:
			target = &snap.StatusChanges
		case bucketEdits:
			target = &snap.Edits
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read ledger_state: %w", err)
	}
	if found {
		s.Import(snap)
	}
	return nil
}

// persist guarda todas las secciones en una sola transacción SQLite.
func (s *Store) persist(snap memory.Snapshot) (retErr error) {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	buckets := []struct {
		name  string
		value any
	}{
		{bucketMaterials, snap.Materials},
		{bucketSegments, snap.Segments},
		{bucketEntries, snap.Entries},
		{bucketStatusChanges, snap.StatusChanges},
		{bucketEdits, snap.Edits},
	}
	for _, b := range buckets {
		data, err := json.Marshal(b.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_state (bucket, payload) VALUES (?, ?)
			 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
			b.name, data,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", b.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite transaction: %w", err)
	}
	return nil
}
