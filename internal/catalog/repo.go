// Package catalog provides items, categories and the inventory ledger backing
// the order flow.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("item not found")
	ErrDuplicate = errors.New("name already taken")
)

type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)
	List(ctx context.Context, q Query) ([]Item, error)
	Update(ctx context.Context, it *Item, updatePrice bool) error
	AddInfo(ctx context.Context, info *ItemInfo) error
	ListInfo(ctx context.Context, itemID string) ([]ItemInfo, error)

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
	AssignCategory(ctx context.Context, itemID, categoryID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, it *Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO items (id, name, vendor_id, price, quantity, is_active, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, it.ID, it.Name, it.VendorID, it.Price, it.Quantity, it.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

const itemCols = `id, name, vendor_id, price::text, quantity, is_active, updated_at`

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var it Item
	err := r.db.QueryRow(ctx, `
		SELECT `+itemCols+` FROM items WHERE id=$1
	`, id).Scan(&it.ID, &it.Name, &it.VendorID, &it.Price, &it.Quantity, &it.IsActive, &it.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (r *PGRepo) GetByName(ctx context.Context, name string) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var it Item
	err := r.db.QueryRow(ctx, `
		SELECT `+itemCols+` FROM items WHERE name=$1
	`, name).Scan(&it.ID, &it.Name, &it.VendorID, &it.Price, &it.Quantity, &it.IsActive, &it.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT `+itemCols+`
		FROM items
		WHERE is_active
		  AND ($1 = '' OR name ILIKE '%'||$1||'%')
		  AND ($2 = '' OR id IN (
		      SELECT ic.item_id FROM item_categories ic
		      JOIN categories c ON c.id = ic.category_id
		      WHERE c.name = $2))
		ORDER BY updated_at DESC
		LIMIT $3 OFFSET $4
	`, search, q.Category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.VendorID, &it.Price, &it.Quantity, &it.IsActive, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update mutates the vendor-owned fields. Quantity changes outside the order
// flow (restocks, corrections) go through here too; order transitions touch
// quantity only via the Ledger.
func (r *PGRepo) Update(ctx context.Context, it *Item, updatePrice bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	if updatePrice {
		_, err = r.db.Exec(ctx, `
			UPDATE items
			SET price = $2, quantity = $3, is_active = $4, updated_at = NOW()
			WHERE id = $1
		`, it.ID, it.Price, it.Quantity, it.IsActive)
	} else {
		_, err = r.db.Exec(ctx, `
			UPDATE items
			SET quantity = $2, is_active = $3, updated_at = NOW()
			WHERE id = $1
		`, it.ID, it.Quantity, it.IsActive)
	}
	return err
}

func (r *PGRepo) AddInfo(ctx context.Context, info *ItemInfo) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO item_info (item_id, type_info, value_info) VALUES ($1,$2,$3)
	`, info.ItemID, info.TypeInfo, info.ValueInfo)
	return err
}

func (r *PGRepo) ListInfo(ctx context.Context, itemID string) ([]ItemInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT item_id, type_info, value_info FROM item_info WHERE item_id=$1
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ItemInfo
	for rows.Next() {
		var info ItemInfo
		if err := rows.Scan(&info.ItemID, &info.TypeInfo, &info.ValueInfo); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1,$2)`, c.ID, c.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *PGRepo) ListCategories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) DeleteCategory(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) AssignCategory(ctx context.Context, itemID, categoryID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO item_categories (item_id, category_id) VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, itemID, categoryID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}
