package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

// BuildingRepo provides CRUD operations on the buildings table.
type BuildingRepo struct {
	db *sql.DB
}

func NewBuildingRepo(db *sql.DB) *BuildingRepo { return &BuildingRepo{db: db} }

// Create inserts b.  The id is chosen by the caller.
func (r *BuildingRepo) Create(ctx context.Context, b *model.Building) error {
	const q = `INSERT INTO buildings (id, name, location) VALUES (?, ?, ?)`
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, b.ID, b.Name, b.Location); err != nil {
		return mapErr(err, ErrDuplicate)
	}
	return nil
}

// GetByID returns ErrBuildingNotFound when no row matches.
func (r *BuildingRepo) GetByID(ctx context.Context, id string) (*model.Building, error) {
	const q = `SELECT id, name, location FROM buildings WHERE id = ?`
	var b model.Building
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Name, &b.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns all buildings ordered by name.
func (r *BuildingRepo) List(ctx context.Context) ([]model.Building, error) {
	const q = `SELECT id, name, location FROM buildings ORDER BY name, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Building{}
	for rows.Next() {
		var b model.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Location); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update overwrites name and location.  It returns ErrBuildingNotFound
// when the row does not exist.
func (r *BuildingRepo) Update(ctx context.Context, b *model.Building) error {
	if _, err := r.GetByID(ctx, b.ID); err != nil {
		return err
	}
	const q = `UPDATE buildings SET name = ?, location = ? WHERE id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, b.Name, b.Location, b.ID)
	return err
}

// Delete removes the building.  A building that still has classrooms
// yields ErrConflict through the foreign key.
func (r *BuildingRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM buildings WHERE id = ?`, id)
	if err != nil {
		return mapErr(err, ErrDuplicate)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBuildingNotFound
	}
	return nil
}
