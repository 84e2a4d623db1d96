package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRunner wraps a *sql.DB and runs a unit of work inside a single
// transaction. Multi-row workflows in the service layer (reserve a vehicle,
// confirm a purchase, sweep expirations) go through InTx so the row writes
// and the vehicle status flip commit or roll back together.
type TxRunner struct {
	DB *sql.DB
}

// InTx begins a transaction, invokes fn and commits when fn returns nil.
// Any error from fn rolls the transaction back and is returned unchanged so
// sentinel comparisons keep working at the call boundary.
func (r TxRunner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
