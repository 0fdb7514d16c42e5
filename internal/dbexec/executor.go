// Package dbexec provides database query execution abstractions.
package dbexec

import (
	"context"
	"database/sql"
	"time"
)

// Rows abstracts sql.Rows to allow wrapped cleanup behavior.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// QueryExecutor abstracts SQL execution so the store can be tested and
// wrapped without a live database.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StandardExecutor executes queries directly against a database handle.
type StandardExecutor struct {
	db *sql.DB
}

// NewStandardExecutor creates an executor that runs queries directly against the database.
func NewStandardExecutor(db *sql.DB) *StandardExecutor {
	return &StandardExecutor{db: db}
}

func (e *StandardExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.QueryContext(ctx, query, args...)
}

func (e *StandardExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.ExecContext(ctx, query, args...)
}

// TimeoutExecutor bounds every statement of the wrapped executor. The
// deadline of a query covers reading its rows and ends when they are closed.
type TimeoutExecutor struct {
	next    QueryExecutor
	timeout time.Duration
}

// WithTimeout wraps next. A non-positive timeout returns next unchanged.
func WithTimeout(next QueryExecutor, timeout time.Duration) QueryExecutor {
	if timeout <= 0 {
		return next
	}
	return &TimeoutExecutor{next: next, timeout: timeout}
}

func (e *TimeoutExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	rows, err := e.next.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelRows{Rows: rows, cancel: cancel}, nil
}

func (e *TimeoutExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.next.ExecContext(ctx, query, args...)
}

type cancelRows struct {
	Rows
	cancel context.CancelFunc
}

func (r *cancelRows) Close() error {
	err := r.Rows.Close()
	r.cancel()
	return err
}
