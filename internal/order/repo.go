package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avezhov/shop-api/internal/catalog"
	"github.com/avezhov/shop-api/internal/store"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrItemNotFound = errors.New("item not found")
	ErrNoOrders     = errors.New("no orders")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	Lines(ctx context.Context, orderID string) ([]Line, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)

	// Basket returns the user's open basket, creating one if none exists.
	Basket(ctx context.Context, userID string) (*Order, error)
	// MergeLine adds qty of an item to a basket, accumulating into an
	// existing line, and recomputes the basket total.
	MergeLine(ctx context.Context, orderID, itemID string, qty int) (*Order, error)

	// Checkout reserves stock for every line and moves basket -> created,
	// all inside one transaction.
	Checkout(ctx context.Context, orderID, addressID string) error
	// Cancel releases whatever Checkout reserved and closes the order.
	Cancel(ctx context.Context, orderID, comment string) error
	// SetState applies a pure transition, guarded on the expected
	// predecessor state.
	SetState(ctx context.Context, orderID string, from, to State) error
	// CloseDelivered moves shipped -> delivered and stamps closed_at.
	CloseDelivered(ctx context.Context, orderID string) error
}

type PGRepo struct {
	store  *store.Store
	ledger catalog.Ledger
}

func NewPGRepo(s *store.Store) *PGRepo { return &PGRepo{store: s} }

const orderCols = `id, user_id, COALESCE(address_id::text,''), state, COALESCE(comment,''), total_price::text, created_at, updated_at, closed_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.UserID, &o.AddressID, &o.State, &o.Comment,
		&o.Total, &o.CreatedAt, &o.UpdatedAt, &o.ClosedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.store.Pool.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders WHERE id=$1
	`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return o, nil
}

func (r *PGRepo) Lines(ctx context.Context, orderID string) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.store.Pool.Query(ctx, `
		SELECT oi.order_id, oi.item_id, i.name, oi.quantity, oi.price_at_order::text
		FROM order_items oi JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.OrderID, &l.ItemID, &l.ItemName, &l.Quantity, &l.PriceAtOrder); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.store.Pool.Query(ctx, `
		SELECT `+orderCols+`
		FROM orders
		WHERE user_id=$1 AND state <> 'basket'
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Basket get-or-creates under the partial unique index on
// (user_id) WHERE state='basket': two racing calls insert at most one row.
func (r *PGRepo) Basket(ctx context.Context, userID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.store.Pool.Exec(ctx, `
		INSERT INTO orders (id, user_id, state, total_price, created_at, updated_at)
		VALUES ($1, $2, 'basket', 0, NOW(), NOW())
		ON CONFLICT (user_id) WHERE state = 'basket' DO NOTHING
	`, uuid.NewString(), userID)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(r.store.Pool.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders WHERE user_id=$1 AND state='basket'
	`, userID))
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) MergeLine(ctx context.Context, orderID, itemID string, qty int) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.store.ExecTx(ctx, func(tx pgx.Tx) error {
		// price_at_order is captured on first insert only; repeated adds
		// accumulate quantity and leave the snapshot untouched. Delisted
		// items fall through to ErrItemNotFound.
		tag, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, item_id, quantity, price_at_order)
			SELECT $1, id, $3, price FROM items WHERE id = $2 AND is_active
			ON CONFLICT (order_id, item_id) DO UPDATE
			SET quantity = order_items.quantity + EXCLUDED.quantity
		`, orderID, itemID, qty)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrItemNotFound
		}

		tag, err = tx.Exec(ctx, `
			UPDATE orders
			SET total_price = (
				SELECT COALESCE(SUM(price_at_order * quantity), 0)
				FROM order_items WHERE order_id = $1
			), updated_at = NOW()
			WHERE id = $1 AND state = 'basket'
		`, orderID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// lockState loads and row-locks the order inside tx so a concurrent
// transition on the same order serializes behind it.
func (r *PGRepo) lockState(ctx context.Context, tx pgx.Tx, orderID string) (State, error) {
	var state State
	err := tx.QueryRow(ctx, `SELECT state FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return state, nil
}

func (r *PGRepo) txLines(ctx context.Context, tx pgx.Tx, orderID string) ([]Line, error) {
	rows, err := tx.Query(ctx, `
		SELECT item_id, quantity FROM order_items WHERE order_id=$1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ItemID, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PGRepo) Checkout(ctx context.Context, orderID, addressID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.store.ExecTx(ctx, func(tx pgx.Tx) error {
		state, err := r.lockState(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if state != StateBasket {
			return ErrInvalidTransition
		}
		lines, err := r.txLines(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := r.ledger.Reserve(ctx, tx, l.ItemID, l.Quantity); err != nil {
				// rollback undoes the decrements already applied to
				// earlier lines
				return fmt.Errorf("item %s: %w", l.ItemID, err)
			}
		}
		_, err = tx.Exec(ctx, `
			UPDATE orders
			SET state = 'created', address_id = $2, updated_at = NOW()
			WHERE id = $1
		`, orderID, addressID)
		return err
	})
}

func (r *PGRepo) Cancel(ctx context.Context, orderID, comment string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.store.ExecTx(ctx, func(tx pgx.Tx) error {
		state, err := r.lockState(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if state.Terminal() {
			return ErrInvalidTransition
		}
		// a basket never reserved anything, so there is nothing to put back
		if state != StateBasket {
			lines, err := r.txLines(ctx, tx, orderID)
			if err != nil {
				return err
			}
			for _, l := range lines {
				if err := r.ledger.Release(ctx, tx, l.ItemID, l.Quantity); err != nil {
					return err
				}
			}
		}
		_, err = tx.Exec(ctx, `
			UPDATE orders
			SET state = 'canceled', comment = $2,
			    closed_at = COALESCE(closed_at, NOW()), updated_at = NOW()
			WHERE id = $1
		`, orderID, comment)
		return err
	})
}

func (r *PGRepo) SetState(ctx context.Context, orderID string, from, to State) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.store.Pool.Exec(ctx, `
		UPDATE orders SET state = $3, updated_at = NOW()
		WHERE id = $1 AND state = $2
	`, orderID, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.store.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, orderID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		// lost a race against another transition
		return ErrInvalidTransition
	}
	return nil
}

func (r *PGRepo) CloseDelivered(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.store.Pool.Exec(ctx, `
		UPDATE orders
		SET state = 'delivered', closed_at = COALESCE(closed_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND state = 'shipped'
	`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.store.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, orderID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}
