// Package store loads datasets into a SQLite table and runs read-only queries
// against it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/bankcap/banketl/internal/model"
)

const driverName = "sqlite"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTableName rejects anything that is not a plain SQL identifier, since
// table names are interpolated into DDL.
func ValidateTableName(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid table name %q: %w", name, model.ErrConfig)
	}
	return nil
}

// Store is a single connection to a file-backed SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w: %w", path, model.ErrIO, err)
	}
	// One writer followed by one reader; a single connection also keeps
	// ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s: %w: %w", path, model.ErrIO, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database %s: %w: %w", s.path, model.ErrIO, err)
	}
	return nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %q (
	%q TEXT,
	%q REAL,
	%q REAL,
	%q REAL,
	%q REAL
)`, table, model.ColName, model.ColUSD, model.ColGBP, model.ColEUR, model.ColINR)
}

func insertSQL(table string) string {
	cols := model.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (?, ?, ?, ?, ?)", table, strings.Join(quoted, ", "))
}

// Replace drops table if it exists, recreates it and inserts ds in order, all
// in one transaction. On failure the previous table is left untouched.
func (s *Store) Replace(ctx context.Context, table string, ds model.Dataset) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w: %w", model.ErrIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
		return fmt.Errorf("dropping table %s: %w: %w", table, model.ErrIO, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("creating table %s: %w: %w", table, model.ErrIO, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table))
	if err != nil {
		return fmt.Errorf("preparing insert: %w: %w", model.ErrIO, err)
	}
	defer stmt.Close()

	for i, rec := range ds {
		args := []any{rec.Name}
		for _, amt := range rec.Amounts() {
			args = append(args, amt.InexactFloat64())
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d (%s): %w: %w", i, rec.Name, model.ErrIO, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing table %s: %w: %w", table, model.ErrIO, err)
	}
	slog.DebugContext(ctx, "loaded table", "table", table, "rows", len(ds))
	return nil
}
