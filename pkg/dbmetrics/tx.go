package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

// Tx транзакция с метриками
type Tx struct {
	tx     *sql.Tx
	parent *DB
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.parent.observe("tx_exec", start, err)
	return res, err
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.parent.observe("tx_query", start, err)
	return rows, err
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.parent.observe("tx_query_row", start, row.Err())
	return row
}

func (t *Tx) Commit() error {
	err := t.tx.Commit()
	t.countOutcome("commit", err)
	return err
}

func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != sql.ErrTxDone {
		t.countOutcome("rollback", err)
	}
	return err
}

func (t *Tx) countOutcome(outcome string, err error) {
	if t.parent.metrics == nil {
		return
	}
	if err != nil {
		outcome += "_error"
	}
	t.parent.metrics.DBTransactionsTotal.WithLabelValues(outcome).Inc()
}
