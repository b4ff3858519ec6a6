package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

// ClassroomRepo provides CRUD and search operations on the classrooms
// table.
type ClassroomRepo struct {
	db *sql.DB
}

func NewClassroomRepo(db *sql.DB) *ClassroomRepo { return &ClassroomRepo{db: db} }

const classroomColumns = `id, name, capacity, type, resources, building_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClassroom(s rowScanner) (*model.Classroom, error) {
	var (
		c         model.Classroom
		typ       string
		resources sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Capacity, &typ, &resources, &c.BuildingID); err != nil {
		return nil, err
	}
	c.Type = model.ClassroomType(typ)
	c.Resources = resources.String
	return &c, nil
}

// Create inserts c.  A duplicate room code yields ErrDuplicate.
func (r *ClassroomRepo) Create(ctx context.Context, c *model.Classroom) error {
	const q = `INSERT INTO classrooms (` + classroomColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, c.ID, c.Name, c.Capacity, string(c.Type), c.Resources, c.BuildingID)
	if err != nil {
		return mapErr(err, ErrDuplicate)
	}
	return nil
}

// GetByID returns ErrClassroomNotFound when no row matches.
func (r *ClassroomRepo) GetByID(ctx context.Context, id string) (*model.Classroom, error) {
	q := `SELECT ` + classroomColumns + ` FROM classrooms WHERE id = ?`
	c, err := scanClassroom(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns the classrooms matching q ordered by id.
func (r *ClassroomRepo) List(ctx context.Context, q model.ClassroomQuery) ([]model.Classroom, error) {
	var (
		where []string
		args  []any
	)
	if q.BuildingID != "" {
		where = append(where, "building_id = ?")
		args = append(args, q.BuildingID)
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(q.Type))
	}
	if q.MinCapacity > 0 {
		where = append(where, "capacity >= ?")
		args = append(args, q.MinCapacity)
	}
	query := `SELECT ` + classroomColumns + ` FROM classrooms`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Classroom{}
	for rows.Next() {
		c, err := scanClassroom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update overwrites every column but the id.
func (r *ClassroomRepo) Update(ctx context.Context, c *model.Classroom) error {
	if _, err := r.GetByID(ctx, c.ID); err != nil {
		return err
	}
	const q = `UPDATE classrooms SET name = ?, capacity = ?, type = ?, resources = ?, building_id = ? WHERE id = ?`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, c.Name, c.Capacity, string(c.Type), c.Resources, c.BuildingID, c.ID)
	return err
}

// Delete removes the classroom.  A classroom still referenced by
// reservations yields ErrConflict.
func (r *ClassroomRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM classrooms WHERE id = ?`, id)
	if err != nil {
		return mapErr(err, ErrDuplicate)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassroomNotFound
	}
	return nil
}
