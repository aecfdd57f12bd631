// Package verify dry-runs emitted DDL against a scratch SQLite database so
// that a schema that cannot be created is caught before it is written.
package verify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const tablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

// StatementError reports the statement that failed to apply
type StatementError struct {
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d failed: %v\n%s", e.Index+1, e.Err, e.Statement)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// ForeignKey is a foreign key found in the scratch database
type ForeignKey struct {
	Table    string
	Column   string
	RefTable string
}

// Report describes the schema the statements produced
type Report struct {
	Statements  int
	Tables      []string
	ForeignKeys []ForeignKey
	Duration    time.Duration
}

// Runner applies DDL statements inside a transaction that is always rolled
// back, leaving the database untouched.
type Runner struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunner creates a runner over db. A nil logger discards logs.
func NewRunner(db *sql.DB, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{db: db, logger: logger}
}

// OpenScratch opens an in-memory SQLite database. It is limited to one
// connection because every connection gets its own memory database.
func OpenScratch() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open scratch database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Apply executes stmts in order and inspects the resulting tables and foreign
// keys. It fails on the first statement that does not apply, and when a
// foreign key references a table that was never created.
func (r *Runner) Apply(ctx context.Context, stmts []string) (*Report, error) {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.Warn("failed to rollback transaction", zap.Error(err))
		}
	}()

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, &StatementError{Index: i, Statement: stmt, Err: err}
		}
	}

	tables, err := listTables(ctx, tx)
	if err != nil {
		return nil, err
	}

	report := &Report{Statements: len(stmts), Tables: tables}
	exists := make(map[string]bool, len(tables))
	for _, t := range tables {
		exists[t] = true
	}

	for _, t := range tables {
		fks, err := listForeignKeys(ctx, tx, t)
		if err != nil {
			return nil, err
		}
		for _, fk := range fks {
			if !exists[fk.RefTable] {
				return nil, fmt.Errorf("table %s: column %s references missing table %s", fk.Table, fk.Column, fk.RefTable)
			}
		}
		report.ForeignKeys = append(report.ForeignKeys, fks...)
	}

	report.Duration = time.Since(start)
	r.logger.Debug("verified schema",
		zap.Int("statements", report.Statements),
		zap.Int("tables", len(report.Tables)),
		zap.Int("foreign_keys", len(report.ForeignKeys)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func listTables(ctx context.Context, tx *sql.Tx) ([]string, error) {
	rows, err := tx.QueryContext(ctx, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func listForeignKeys(ctx context.Context, tx *sql.Tx, table string) ([]ForeignKey, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", pq.QuoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var (
			id, seq                      int
			ref, from                    string
			to                           sql.NullString
			onUpdate, onDelete, matchArg string
		)
		if err := rows.Scan(&id, &seq, &ref, &from, &to, &onUpdate, &onDelete, &matchArg); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key of %s: %w", table, err)
		}
		fks = append(fks, ForeignKey{Table: table, Column: from, RefTable: ref})
	}
	return fks, rows.Err()
}
