package handlers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type SimpleRow struct {
	scan func(dest ...any) error
}

func NewSimpleRow(scanner func(dest ...any) error) SimpleRow {
	return SimpleRow{scan: scanner}
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// TestRowsBase fills in the pgx.Rows methods a fake iterator never
// needs, so each test only implements Next, Scan, Err and Close.
type TestRowsBase struct{}

func (TestRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (TestRowsBase) Conn() *pgx.Conn { return nil }

func (TestRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (TestRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (TestRowsBase) RawValues() [][]byte { return nil }

// scriptedSQL routes each statement to a test-provided closure. Tests
// wire only the statements they expect; anything else fails loudly.
type scriptedSQL struct {
	exec     func(query string, args []any) (pgconn.CommandTag, error)
	queryRow func(query string, args []any) pgx.Row
	query    func(query string, args []any) (pgx.Rows, error)
}

func (s *scriptedSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.exec == nil {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", query)
	}
	return s.exec(query, args)
}

func (s *scriptedSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if s.queryRow == nil {
		return SimpleRow{scan: func(...any) error {
			return fmt.Errorf("unexpected query row: %s", query)
		}}
	}
	return s.queryRow(query, args)
}

func (s *scriptedSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	if s.query == nil {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	return s.query(query, args)
}
