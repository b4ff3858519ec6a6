package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var (
	day   = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cols  = []string{"id", "classroom_id", "user_id", "start_time", "end_time", "status", "purpose", "created_at", "updated_at"}
	rooms = []string{"id", "name", "capacity", "type", "resources", "building_id"}
)

func TestLockClassroomRequiresTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	_, err := repo.LockClassroom(context.Background(), "C1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicallyLocksAndCommits(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, capacity, type, resources, building_id FROM classrooms WHERE id = ? FOR UPDATE`)).
		WithArgs("C1").
		WillReturnRows(sqlmock.NewRows(rooms).AddRow("C1", "Room 101", 30, "AULA", nil, "B1"))
	mock.ExpectQuery(`(?s)FROM reservations\s+WHERE classroom_id = \? AND status = \? AND start_time < \? AND end_time > \? AND id <> \? ORDER BY start_time`).
		WithArgs("C1", "CONFIRMED", day.Add(2*time.Hour), day, "r1").
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectCommit()

	err := repo.Atomically(context.Background(), func(ctx context.Context) error {
		room, err := repo.LockClassroom(ctx, "C1")
		if err != nil {
			return err
		}
		assert.Equal(t, model.ClassroomAula, room.Type)
		assert.Empty(t, room.Resources)
		rows, err := repo.FindConfirmedOverlap(ctx, "C1", day, day.Add(2*time.Hour), "r1")
		assert.Empty(t, rows)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicallyRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE id = ? FOR UPDATE`)).
		WithArgs("r1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Atomically(context.Background(), func(ctx context.Context) error {
		_, err := repo.FindByID(ctx, "r1")
		assert.ErrorIs(t, err, ErrReservationNotFound)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNestedAtomicallyJoins(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := repo.Atomically(context.Background(), func(ctx context.Context) error {
		return repo.Atomically(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDOutsideTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	local := time.FixedZone("X", 3600)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE id = ?`) + `$`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("r1", "C1", "u1", day.In(local), day.Add(time.Hour), "PENDING", nil, day, day))

	r, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, r.Status)
	assert.Equal(t, time.UTC, r.StartTime.Location())
	assert.True(t, r.StartTime.Equal(day))
	assert.Empty(t, r.Purpose)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllBuildsFilter(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE classroom_id = ? AND status = ? AND start_time > ? ORDER BY start_time, id`)).
		WithArgs("C1", "CONFIRMED", day).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("r1", "C1", "u1", day.Add(time.Hour), day.Add(2*time.Hour), "CONFIRMED", "lecture", day, day).
			AddRow("r2", "C1", "u2", day.Add(3*time.Hour), day.Add(4*time.Hour), "CONFIRMED", "lab", day, day))

	got, err := repo.FindAll(context.Background(), model.ReservationFilter{ClassroomID: "C1", Status: model.StatusConfirmed, StartAfter: day})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "lecture", got[0].Purpose)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAllActiveAtBoundsWindow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM reservations WHERE status = ? AND start_time <= ? AND end_time > ? ORDER BY start_time, id`)).
		WithArgs("CONFIRMED", day, day).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("r1", "C1", "u1", day, day.Add(time.Hour), "CONFIRMED", "lecture", day, day))

	got, err := repo.FindAll(context.Background(), model.ReservationFilter{Status: model.StatusConfirmed, ActiveAt: day})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMapsDuplicateKey(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &model.Reservation{ID: "r1", StartTime: day, EndTime: day.Add(time.Hour)})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDeleteMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservations`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reservations WHERE id = ?`)).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Update(context.Background(), &model.Reservation{ID: "r1"}), ErrReservationNotFound)
	require.ErrorIs(t, repo.DeleteByID(context.Background(), "r1"), ErrReservationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMapErr(t *testing.T) {
	plain := errors.New("plain")
	assert.ErrorIs(t, mapErr(&mysql.MySQLError{Number: 1062}, ErrEmailExists), ErrEmailExists)
	assert.ErrorIs(t, mapErr(&mysql.MySQLError{Number: 1451}, ErrDuplicate), ErrConflict)
	assert.Equal(t, plain, mapErr(plain, ErrDuplicate))

	other := &mysql.MySQLError{Number: 1213}
	assert.Equal(t, error(other), mapErr(other, ErrDuplicate))
}
