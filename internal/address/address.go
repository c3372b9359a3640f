package address

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("address not found")
	ErrDuplicate = errors.New("address already exists")
	ErrInUse     = errors.New("address is referenced by an order")
)

type Address struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Building  string `json:"building,omitempty"`
	Floor     int    `json:"floor,omitempty"`
	Apartment int    `json:"apartment"`
}

type Repository interface {
	Create(ctx context.Context, a *Address) error
	GetByID(ctx context.Context, id string) (*Address, error)
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	ListAll(ctx context.Context, limit, offset int) ([]Address, error)
	Delete(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, a *Address) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO addresses (id, user_id, city, street, house, building, floor, apartment)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, a.ID, a.UserID, a.City, a.Street, a.House, a.Building, a.Floor, a.Apartment)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a Address
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, city, street, house, COALESCE(building,''), COALESCE(floor,0), apartment
		FROM addresses WHERE id=$1
	`, id).Scan(&a.ID, &a.UserID, &a.City, &a.Street, &a.House, &a.Building, &a.Floor, &a.Apartment)
	if err != nil {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Address, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.City, &a.Street, &a.House, &a.Building, &a.Floor, &a.Apartment); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.list(ctx, `
		SELECT id, user_id, city, street, house, COALESCE(building,''), COALESCE(floor,0), apartment
		FROM addresses WHERE user_id=$1
	`, userID)
}

func (r *PGRepo) ListAll(ctx context.Context, limit, offset int) ([]Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return r.list(ctx, `
		SELECT id, user_id, city, street, house, COALESCE(building,''), COALESCE(floor,0), apartment
		FROM addresses ORDER BY city, street LIMIT $1 OFFSET $2
	`, limit, offset)
}

// Delete refuses to remove an address any order still points at. Orders keep
// the foreign key instead of a snapshot, so history must stay resolvable.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
