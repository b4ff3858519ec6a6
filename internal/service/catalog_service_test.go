package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/storetest"
)

func newCatalog(t *testing.T) (*CatalogService, *storetest.Store) {
	t.Helper()
	st := storetest.New()
	st.PutBuilding(model.Building{ID: "B1", Name: "Main"})
	st.PutClassroom(model.Classroom{ID: "C1", Name: "Room 101", Capacity: 30, Type: model.ClassroomAula, BuildingID: "B1"})
	st.PutClassroom(model.Classroom{ID: "C2", Name: "Lab 2", Capacity: 20, Type: model.ClassroomLaboratorio, BuildingID: "B1"})
	st.PutClassroom(model.Classroom{ID: "C3", Name: "Hall", Capacity: 200, Type: model.ClassroomAuditorio, BuildingID: "B1"})
	svc := NewCatalogService(st.Buildings(), st.Classrooms(), st, nil)
	svc.now = func() time.Time { return t0 }
	svc.newID = func() string { return "B-new" }
	return svc, st
}

func TestBuildings(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateBuilding(ctx, model.Building{Name: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)

	b, err := svc.CreateBuilding(ctx, model.Building{Name: " Annex ", Location: "North"})
	require.NoError(t, err)
	assert.Equal(t, "B-new", b.ID)
	assert.Equal(t, "Annex", b.Name)

	_, err = svc.CreateBuilding(ctx, model.Building{Name: "Again"})
	require.ErrorIs(t, err, ErrConflict)

	all, err := svc.ListBuildings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	b, err = svc.UpdateBuilding(ctx, "B-new", model.Building{Name: "Annex 2"})
	require.NoError(t, err)
	assert.Equal(t, "Annex 2", b.Name)
	_, err = svc.UpdateBuilding(ctx, "nope", model.Building{Name: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.DeleteBuilding(ctx, "B1"), ErrConflict, "B1 still has classrooms")
	require.NoError(t, svc.DeleteBuilding(ctx, "B-new"))
	_, err = svc.GetBuilding(ctx, "B-new")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClassrooms(t *testing.T) {
	svc, st := newCatalog(t)
	ctx := context.Background()

	valid := model.Classroom{ID: "C9", Name: "Seminar", Capacity: 12, Type: "aula", BuildingID: "B1"}
	c, err := svc.CreateClassroom(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, model.ClassroomAula, c.Type)

	_, err = svc.CreateClassroom(ctx, valid)
	require.ErrorIs(t, err, ErrConflict)

	bad := []model.Classroom{
		{Name: "x", Capacity: 1, Type: model.ClassroomAula, BuildingID: "B1"},
		{ID: "X", Capacity: 1, Type: model.ClassroomAula, BuildingID: "B1"},
		{ID: "X", Name: "x", Capacity: 0, Type: model.ClassroomAula, BuildingID: "B1"},
		{ID: "X", Name: "x", Capacity: 1, Type: "GYM", BuildingID: "B1"},
		{ID: "X", Name: "x", Capacity: 1, Type: model.ClassroomAula},
	}
	for _, in := range bad {
		_, err := svc.CreateClassroom(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}
	valid.BuildingID = "B404"
	valid.ID = "C10"
	_, err = svc.CreateClassroom(ctx, valid)
	require.ErrorIs(t, err, ErrNotFound)

	c, err = svc.UpdateClassroom(ctx, "C9", model.Classroom{Name: "Seminar B", Capacity: 14, Type: model.ClassroomAula, BuildingID: "B1"})
	require.NoError(t, err)
	assert.Equal(t, "C9", c.ID)
	assert.Equal(t, 14, c.Capacity)

	st.PutReservation(model.Reservation{ID: "r1", ClassroomID: "C9", UserID: "u", Status: model.StatusCancelled, StartTime: at(1), EndTime: at(2)})
	require.ErrorIs(t, svc.DeleteClassroom(ctx, "C9"), ErrConflict)
	require.NoError(t, svc.DeleteClassroom(ctx, "C2"))
	_, err = svc.GetClassroom(ctx, "C2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListClassrooms(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	got, err := svc.ListClassrooms(ctx, model.ClassroomQuery{Type: "laboratorio"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C2", got[0].ID)

	got, err = svc.ListClassrooms(ctx, model.ClassroomQuery{MinCapacity: 30})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.ListClassrooms(ctx, model.ClassroomQuery{BuildingID: "B1"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = svc.ListClassrooms(ctx, model.ClassroomQuery{Type: "GYM"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ListClassrooms(ctx, model.ClassroomQuery{MinCapacity: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ListClassrooms(ctx, model.ClassroomQuery{BuildingID: "B404"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAvailableNow(t *testing.T) {
	svc, st := newCatalog(t)
	ctx := context.Background()
	st.PutReservation(model.Reservation{ID: "busy", ClassroomID: "C1", Status: model.StatusConfirmed, StartTime: at(-1), EndTime: at(1)})
	st.PutReservation(model.Reservation{ID: "pending", ClassroomID: "C2", Status: model.StatusPending, StartTime: at(-1), EndTime: at(1)})
	st.PutReservation(model.Reservation{ID: "starts", ClassroomID: "C3", Status: model.StatusConfirmed, StartTime: t0, EndTime: at(1)})
	st.PutReservation(model.Reservation{ID: "ended", ClassroomID: "C2", Status: model.StatusConfirmed, StartTime: at(-2), EndTime: t0})

	free, err := svc.AvailableNow(ctx)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "C2", free[0].ID)

	taken, err := svc.UnavailableNow(ctx)
	require.NoError(t, err)
	assert.Len(t, taken, 2, "a window starting exactly now is in progress")

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AvailabilitySummary{Total: 3, Available: 1, Unavailable: 2}, sum)
}

func TestCheckAvailability(t *testing.T) {
	svc, st := newCatalog(t)
	ctx := context.Background()
	st.PutReservation(model.Reservation{ID: "busy", ClassroomID: "C1", Status: model.StatusConfirmed,
		StartTime: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), EndTime: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)})

	res, err := svc.CheckAvailability(ctx, AvailabilityQuery{ClassroomID: "C1", Date: "2026-03-02", StartTime: "11:00", EndTime: "13:00"})
	require.NoError(t, err)
	assert.False(t, res.Available)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "busy", res.Conflicts[0].ID)

	res, err = svc.CheckAvailability(ctx, AvailabilityQuery{ClassroomID: "C1", Date: "2026-03-02", StartTime: "12:00", EndTime: "13:00"})
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), res.StartTime)

	for _, q := range []AvailabilityQuery{
		{Date: "2026-03-02", StartTime: "12:00", EndTime: "13:00"},
		{ClassroomID: "C1", Date: "02/03/2026", StartTime: "12:00", EndTime: "13:00"},
		{ClassroomID: "C1", Date: "2026-03-02", StartTime: "noon", EndTime: "13:00"},
		{ClassroomID: "C1", Date: "2026-03-02", StartTime: "13:00", EndTime: "12:00"},
	} {
		_, err := svc.CheckAvailability(ctx, q)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", q)
	}
	_, err = svc.CheckAvailability(ctx, AvailabilityQuery{ClassroomID: "C404", Date: "2026-03-02", StartTime: "12:00", EndTime: "13:00"})
	assert.ErrorIs(t, err, ErrNotFound)
}
