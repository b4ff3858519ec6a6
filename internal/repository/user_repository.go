package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

func normEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password and inserts u.  u.ID must already be set; the
// stored email is normalised and the timestamps are filled in.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	u.Email = normEmail(u.Email)
	u.PasswordHash = hash
	u.CreatedAt, u.UpdatedAt = now, now
	q := `INSERT INTO users (` + userColumns + `) VALUES (?,?,?,?,?,?,?)`
	_, err = conn(ctx, r.DB).ExecContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return mapErr(err, ErrEmailExists)
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=? LIMIT 1`
	u, err := scanUser(conn(ctx, r.DB).QueryRowContext(ctx, q, normEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=? LIMIT 1`
	u, err := scanUser(conn(ctx, r.DB).QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns users ordered by email, optionally restricted to role.
func (r *UserRepo) List(ctx context.Context, role model.Role) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if role != "" {
		q += ` WHERE role=?`
		args = append(args, string(role))
	}
	q += ` ORDER BY email`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update writes name, email and role.  When password is non-empty it is
// hashed and replaces the stored hash.
func (r *UserRepo) Update(ctx context.Context, u *model.User, password string, cost int) error {
	if password != "" {
		hash, err := utils.HashPassword(password, cost)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	u.Email = normEmail(u.Email)
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE users SET name=?, email=?, password_hash=?, role=?, updated_at=? WHERE id=?`
	res, err := conn(ctx, r.DB).ExecContext(ctx, q, u.Name, u.Email, u.PasswordHash, string(u.Role), u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err, ErrEmailExists)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user.  Users that still own reservations yield
// ErrConflict.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return mapErr(err, ErrDuplicate)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
