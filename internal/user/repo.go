package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrAlreadyExist = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetActive(ctx context.Context, id string, active bool) error
	GrantRole(ctx context.Context, userID, role string) error
	UpsertVendorInfo(ctx context.Context, v *VendorInfo) error
	GetVendorInfo(ctx context.Context, userID string) (*VendorInfo, error)
	UpsertUserInfo(ctx context.Context, info *UserInfo) error
	ListUserInfo(ctx context.Context, userID string) ([]UserInfo, error)
	DeleteUserInfo(ctx context.Context, userID, typeInfo string) error
	CreatePosition(ctx context.Context, p *Position) error
	ListPositions(ctx context.Context) ([]Position, error)
	DeletePosition(ctx context.Context, id string) (bool, error)
	UpsertStaffInfo(ctx context.Context, s *StaffInfo) error
	GetStaffInfo(ctx context.Context, userID string) (*StaffInfo, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, is_active, is_staff, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
	`, u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsActive, u.IsStaff)
	if err != nil {
		// UNIQUE on email
		return ErrAlreadyExist
	}
	return nil
}

func (r *PGRepo) scanOne(ctx context.Context, query, arg string) (*User, error) {
	row := r.db.QueryRow(ctx, query, arg)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, ErrNotFound
	}
	roles, err := r.roles(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.scanOne(ctx, `
		SELECT id, email, first_name, last_name, password_hash, is_active, is_staff, created_at, updated_at
		FROM users WHERE id=$1
	`, id)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.scanOne(ctx, `
		SELECT id, email, first_name, last_name, password_hash, is_active, is_staff, created_at, updated_at
		FROM users WHERE email=$1
	`, email)
}

func (r *PGRepo) roles(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT role FROM user_roles WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_active=$2, updated_at=NOW() WHERE id=$1
	`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) GrantRole(ctx context.Context, userID, role string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role) VALUES ($1,$2)
		ON CONFLICT (user_id, role) DO NOTHING
	`, userID, role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PGRepo) UpsertVendorInfo(ctx context.Context, v *VendorInfo) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO vendor_info (user_id, name, inn, description)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE
		SET name=EXCLUDED.name, inn=EXCLUDED.inn, description=EXCLUDED.description
	`, v.UserID, v.Name, v.INN, v.Description)
	return err
}

func (r *PGRepo) GetVendorInfo(ctx context.Context, userID string) (*VendorInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var v VendorInfo
	err := r.db.QueryRow(ctx, `
		SELECT user_id, name, inn, COALESCE(description,'')
		FROM vendor_info WHERE user_id=$1
	`, userID).Scan(&v.UserID, &v.Name, &v.INN, &v.Description)
	if err != nil {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (r *PGRepo) UpsertUserInfo(ctx context.Context, info *UserInfo) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO user_info (user_id, type_info, value_info)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, type_info) DO UPDATE
		SET value_info = EXCLUDED.value_info
	`, info.UserID, info.TypeInfo, info.ValueInfo)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PGRepo) ListUserInfo(ctx context.Context, userID string) ([]UserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT user_id, type_info, value_info FROM user_info WHERE user_id=$1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UserInfo
	for rows.Next() {
		var info UserInfo
		if err := rows.Scan(&info.UserID, &info.TypeInfo, &info.ValueInfo); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *PGRepo) DeleteUserInfo(ctx context.Context, userID, typeInfo string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM user_info WHERE user_id=$1 AND type_info=$2
	`, userID, typeInfo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CreatePosition(ctx context.Context, p *Position) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `INSERT INTO positions (id, name) VALUES ($1,$2)`, p.ID, p.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExist
		}
		return err
	}
	return nil
}

func (r *PGRepo) ListPositions(ctx context.Context) ([]Position, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name FROM positions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) DeletePosition(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM positions WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) UpsertStaffInfo(ctx context.Context, s *StaffInfo) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO staff_info (user_id, manager_id, position_id, is_active, description)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET manager_id = EXCLUDED.manager_id, position_id = EXCLUDED.position_id,
		    is_active = EXCLUDED.is_active, description = EXCLUDED.description
	`, s.UserID, s.ManagerID, s.PositionID, s.IsActive, s.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetStaffInfo(ctx context.Context, userID string) (*StaffInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s StaffInfo
	err := r.db.QueryRow(ctx, `
		SELECT user_id, COALESCE(manager_id::text,''), COALESCE(position_id::text,''),
		       is_active, COALESCE(description,'')
		FROM staff_info WHERE user_id=$1
	`, userID).Scan(&s.UserID, &s.ManagerID, &s.PositionID, &s.IsActive, &s.Description)
	if err != nil {
		return nil, ErrNotFound
	}
	return &s, nil
}
