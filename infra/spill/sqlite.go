package spill

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	corespill "github.com/kilianp07/cakeday/core/spill"
)

// SQLiteStore keeps spill records in a throwaway SQLite database. Each
// Append is one transaction.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

// NewSQLiteStore creates a uniquely named database in dir. An empty dir means
// the system temp directory.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "cakeday-spill-"+uuid.NewString()+".db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS spill (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        day TEXT NOT NULL,
        small INTEGER NOT NULL,
        large INTEGER NOT NULL,
        names TEXT NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		cerr := db.Close()
		_ = os.Remove(path)
		if cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{path: path, db: db}, nil
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Append(ctx context.Context, recs []corespill.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return corespill.IOError("begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO spill (day, small, large, names) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return corespill.IOError("prepare", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range recs {
		names, merr := json.Marshal(r.Names)
		if merr != nil {
			return corespill.IOError("encode names", merr)
		}
		if _, err = stmt.ExecContext(ctx, r.Date, r.Small, r.Large, string(names)); err != nil {
			return corespill.IOError("insert", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return corespill.IOError("commit", err)
	}
	return nil
}

func (s *SQLiteStore) Scan(ctx context.Context, fn func(corespill.Record) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT day, small, large, names FROM spill ORDER BY id`)
	if err != nil {
		return corespill.IOError("query", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r corespill.Record
		var names string
		if err := rows.Scan(&r.Date, &r.Small, &r.Large, &names); err != nil {
			return corespill.IOError("scan", err)
		}
		if err := json.Unmarshal([]byte(names), &r.Names); err != nil {
			return corespill.IOError("decode names", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return corespill.IOError("rows", err)
	}
	return nil
}

func (s *SQLiteStore) Remove() error {
	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
		s.db = nil
	}
	for _, p := range []string{s.path, s.path + "-journal", s.path + "-wal", s.path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return corespill.IOError("remove", err)
	}
	return nil
}
