// Package storetest provides an in-memory implementation of the
// persistence interfaces for tests.  Transactions are serialised by a
// single mutex so a test can reason about interleavings, and are rolled
// back by restoring a snapshot when fn fails.
package storetest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/repository"
)

type txKey struct{}

// Store holds buildings, classrooms, users and reservations.  Store itself
// is the reservation store; Buildings, Classrooms and Users return views
// implementing the other collaborators.
type Store struct {
	tx sync.Mutex // held for the whole of Atomically
	mu sync.Mutex // guards the maps below

	buildings    map[string]model.Building
	classrooms   map[string]model.Classroom
	users        map[string]model.User
	reservations map[string]model.Reservation

	locks []string

	// OnLock, when set, runs after every successful LockClassroom.
	OnLock func(ctx context.Context, classroomID string)
	// OverlapErr, when set, is returned by FindConfirmedOverlap.
	OverlapErr error
}

func New() *Store {
	return &Store{
		buildings:    map[string]model.Building{},
		classrooms:   map[string]model.Classroom{},
		users:        map[string]model.User{},
		reservations: map[string]model.Reservation{},
	}
}

// ----- seeding helpers -----

func (s *Store) PutBuilding(b model.Building) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings[b.ID] = b
}

func (s *Store) PutClassroom(c model.Classroom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classrooms[c.ID] = c
}

func (s *Store) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) PutReservation(r model.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = r
}

// Reservation returns the stored copy of id.
func (s *Store) Reservation(id string) (model.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	return r, ok
}

// Count returns the number of stored reservations.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

// Locks returns the classroom ids locked so far, in order.
func (s *Store) Locks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.locks...)
}

// ----- transactions -----

func inTx(ctx context.Context) bool { return ctx.Value(txKey{}) != nil }

func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.tx.Lock()
	defer s.tx.Unlock()

	s.mu.Lock()
	snapshot := make(map[string]model.Reservation, len(s.reservations))
	for k, v := range s.reservations {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.reservations = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) LockClassroom(ctx context.Context, classroomID string) (*model.Classroom, error) {
	if !inTx(ctx) {
		return nil, errors.New("storetest: LockClassroom called outside a transaction")
	}
	s.mu.Lock()
	c, ok := s.classrooms[classroomID]
	if ok {
		s.locks = append(s.locks, classroomID)
	}
	s.mu.Unlock()
	if !ok {
		return nil, repository.ErrClassroomNotFound
	}
	if s.OnLock != nil {
		s.OnLock(ctx, classroomID)
	}
	return &c, nil
}

// ----- reservations -----

func (s *Store) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return &r, nil
}

func (s *Store) FindAll(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range s.reservations {
		if f.ClassroomID != "" && r.ClassroomID != f.ClassroomID {
			continue
		}
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if !f.StartAfter.IsZero() && !r.StartTime.After(f.StartAfter) {
			continue
		}
		if !f.ActiveAt.IsZero() && (r.StartTime.After(f.ActiveAt) || !f.ActiveAt.Before(r.EndTime)) {
			continue
		}
		out = append(out, r)
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) FindConfirmedOverlap(_ context.Context, classroomID string, start, end time.Time, excludeID string) ([]model.Reservation, error) {
	if s.OverlapErr != nil {
		return nil, s.OverlapErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.ClassroomID != classroomID || r.Status != model.StatusConfirmed || r.ID == excludeID {
			continue
		}
		if r.StartTime.Before(end) && start.Before(r.EndTime) {
			out = append(out, r)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) Create(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[r.ID]; ok {
		return repository.ErrDuplicate
	}
	s.reservations[r.ID] = *r
	return nil
}

func (s *Store) Update(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[r.ID]; !ok {
		return repository.ErrReservationNotFound
	}
	s.reservations[r.ID] = *r
	return nil
}

func (s *Store) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(s.reservations, id)
	return nil
}

func sortByStart(rs []model.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].StartTime.Equal(rs[j].StartTime) {
			return rs[i].StartTime.Before(rs[j].StartTime)
		}
		return rs[i].ID < rs[j].ID
	})
}

// ----- users -----

// Users is the UserLookup view of a Store.
type Users struct{ s *Store }

func (s *Store) Users() Users { return Users{s} }

func (u Users) GetByID(_ context.Context, id string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	v, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &v, nil
}

// ----- buildings -----

// Buildings is the BuildingStore view of a Store.
type Buildings struct{ s *Store }

func (s *Store) Buildings() Buildings { return Buildings{s} }

func (b Buildings) Create(_ context.Context, v *model.Building) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if _, ok := b.s.buildings[v.ID]; ok {
		return repository.ErrDuplicate
	}
	b.s.buildings[v.ID] = *v
	return nil
}

func (b Buildings) GetByID(_ context.Context, id string) (*model.Building, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	v, ok := b.s.buildings[id]
	if !ok {
		return nil, repository.ErrBuildingNotFound
	}
	return &v, nil
}

func (b Buildings) List(context.Context) ([]model.Building, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	out := []model.Building{}
	for _, v := range b.s.buildings {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b Buildings) Update(_ context.Context, v *model.Building) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if _, ok := b.s.buildings[v.ID]; !ok {
		return repository.ErrBuildingNotFound
	}
	b.s.buildings[v.ID] = *v
	return nil
}

func (b Buildings) Delete(_ context.Context, id string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if _, ok := b.s.buildings[id]; !ok {
		return repository.ErrBuildingNotFound
	}
	for _, c := range b.s.classrooms {
		if c.BuildingID == id {
			return repository.ErrConflict
		}
	}
	delete(b.s.buildings, id)
	return nil
}

// ----- classrooms -----

// Classrooms is the ClassroomStore and ClassroomLookup view of a Store.
type Classrooms struct{ s *Store }

func (s *Store) Classrooms() Classrooms { return Classrooms{s} }

func (c Classrooms) Create(_ context.Context, v *model.Classroom) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.classrooms[v.ID]; ok {
		return repository.ErrDuplicate
	}
	c.s.classrooms[v.ID] = *v
	return nil
}

func (c Classrooms) GetByID(_ context.Context, id string) (*model.Classroom, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	v, ok := c.s.classrooms[id]
	if !ok {
		return nil, repository.ErrClassroomNotFound
	}
	return &v, nil
}

func (c Classrooms) List(_ context.Context, q model.ClassroomQuery) ([]model.Classroom, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := []model.Classroom{}
	for _, v := range c.s.classrooms {
		if q.BuildingID != "" && v.BuildingID != q.BuildingID {
			continue
		}
		if q.Type != "" && !strings.EqualFold(string(v.Type), string(q.Type)) {
			continue
		}
		if v.Capacity < q.MinCapacity {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c Classrooms) Update(_ context.Context, v *model.Classroom) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.classrooms[v.ID]; !ok {
		return repository.ErrClassroomNotFound
	}
	c.s.classrooms[v.ID] = *v
	return nil
}

func (c Classrooms) Delete(_ context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.classrooms[id]; !ok {
		return repository.ErrClassroomNotFound
	}
	for _, r := range c.s.reservations {
		if r.ClassroomID == id {
			return repository.ErrConflict
		}
	}
	delete(c.s.classrooms, id)
	return nil
}
