package catalog

import (
	"context"
	"errors"

	"github.com/avezhov/shop-api/internal/store"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Ledger owns Item.quantity. Reserve and Release are the only two mutations
// of on-hand quantity the order flow performs, and both are single guarded
// UPDATEs, so they are linearizable per item row without an explicit lock.
// Callers pass the transaction the surrounding order transition runs under.
type Ledger struct{}

// Reserve decrements quantity by n, failing with ErrInsufficientStock when
// fewer than n units are on hand. The quantity is left untouched on failure.
func (Ledger) Reserve(ctx context.Context, db store.DBTX, itemID string, n int) error {
	tag, err := db.Exec(ctx, `
		UPDATE items SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`, itemID, n)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM items WHERE id=$1)`, itemID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// Release increments quantity by n. It always succeeds for an existing item.
func (Ledger) Release(ctx context.Context, db store.DBTX, itemID string, n int) error {
	tag, err := db.Exec(ctx, `
		UPDATE items SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
	`, itemID, n)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
