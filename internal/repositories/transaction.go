package repositories

import (
	"database/sql"
	"fmt"
)

// TxFunc runs inside a database transaction.
type TxFunc func(exec SQLExecutor) error

// TxRunner executes a function within a transaction, committing on nil error
// and rolling back otherwise.
type TxRunner interface {
	WithinTx(fn TxFunc) error
}

type sqlTxRunner struct {
	db *sql.DB
}

// NewTxRunner returns a TxRunner backed by db.
func NewTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) WithinTx(fn TxFunc) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", ErrDatabaseError, err)
	}
	return nil
}
