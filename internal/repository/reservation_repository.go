package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

// ReservationRepo persists reservations and provides the transaction and
// classroom lock the booking path relies on.  All timestamps are stored
// in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, classroom_id, user_id, start_time, end_time, status, purpose, created_at, updated_at`

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var (
		r       model.Reservation
		status  string
		purpose sql.NullString
	)
	err := s.Scan(&r.ID, &r.ClassroomID, &r.UserID, &r.StartTime, &r.EndTime, &status, &purpose, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = model.ReservationStatus(status)
	r.Purpose = purpose.String
	r.StartTime, r.EndTime = r.StartTime.UTC(), r.EndTime.UTC()
	r.CreatedAt, r.UpdatedAt = r.CreatedAt.UTC(), r.UpdatedAt.UTC()
	return &r, nil
}

func scanReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Atomically runs fn in a single transaction.  Repository calls made with
// the context passed to fn, on this or any other repo sharing the
// database, take part in it.
func (r *ReservationRepo) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// LockClassroom takes an exclusive row lock on the classroom, held until
// the surrounding transaction ends, and returns the row.  It fails when
// called outside Atomically since a lock without a transaction is
// released immediately.
func (r *ReservationRepo) LockClassroom(ctx context.Context, classroomID string) (*model.Classroom, error) {
	if !inTx(ctx) {
		return nil, errors.New("repository: LockClassroom called outside a transaction")
	}
	q := `SELECT ` + classroomColumns + ` FROM classrooms WHERE id = ? FOR UPDATE`
	c, err := scanClassroom(conn(ctx, r.db).QueryRowContext(ctx, q, classroomID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}
	return c, nil
}

// FindByID loads one reservation.  Inside a transaction the row is
// locked so the caller's read-modify-write cannot interleave with
// another one on the same reservation.
func (r *ReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	res, err := scanReservation(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// FindAll returns the reservations matching f in start order.
func (r *ReservationRepo) FindAll(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.ClassroomID != "" {
		where = append(where, "classroom_id = ?")
		args = append(args, f.ClassroomID)
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if !f.StartAfter.IsZero() {
		where = append(where, "start_time > ?")
		args = append(args, f.StartAfter.UTC())
	}
	if !f.ActiveAt.IsZero() {
		where = append(where, "start_time <= ? AND end_time > ?")
		args = append(args, f.ActiveAt.UTC(), f.ActiveAt.UTC())
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY start_time, id"

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanReservations(rows)
}

// FindConfirmedOverlap returns CONFIRMED reservations on classroomID whose
// window overlaps [start,end), skipping excludeID when it is non-empty.
func (r *ReservationRepo) FindConfirmedOverlap(ctx context.Context, classroomID string, start, end time.Time, excludeID string) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      WHERE classroom_id = ? AND status = ? AND start_time < ? AND end_time > ?`
	args := []any{classroomID, string(model.StatusConfirmed), end.UTC(), start.UTC()}
	if excludeID != "" {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += ` ORDER BY start_time`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanReservations(rows)
}

// Create inserts res with the id and timestamps already set.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	q := `INSERT INTO reservations (` + reservationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q,
		res.ID, res.ClassroomID, res.UserID, res.StartTime.UTC(), res.EndTime.UTC(),
		string(res.Status), res.Purpose, res.CreatedAt.UTC(), res.UpdatedAt.UTC())
	if err != nil {
		return mapErr(err, ErrDuplicate)
	}
	return nil
}

// Update overwrites every mutable column of res.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET classroom_id = ?, user_id = ?, start_time = ?, end_time = ?, status = ?, purpose = ?, updated_at = ?
	           WHERE id = ?`
	result, err := conn(ctx, r.db).ExecContext(ctx, q,
		res.ClassroomID, res.UserID, res.StartTime.UTC(), res.EndTime.UTC(),
		string(res.Status), res.Purpose, res.UpdatedAt.UTC(), res.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// DeleteByID removes the reservation row.
func (r *ReservationRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}
