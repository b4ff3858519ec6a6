package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// SortField names a reservation attribute listings can be ordered by.
type SortField string

const (
	SortStartTime SortField = "startTime"
	SortEndTime   SortField = "endTime"
	SortCreatedAt SortField = "createdAt"
	SortStatus    SortField = "status"
)

// Sort is an ordering for reservation listings.
type Sort struct {
	Field SortField
	Desc  bool
}

// ParseSort parses "field[,asc|desc]".  An empty string yields
// startTime ascending.
func ParseSort(s string) (Sort, error) {
	out := Sort{Field: SortStartTime}
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}
	field, dir, _ := strings.Cut(s, ",")
	switch f := SortField(strings.TrimSpace(field)); f {
	case SortStartTime, SortEndTime, SortCreatedAt, SortStatus:
		out.Field = f
	case "":
	default:
		return Sort{}, invalidInput("unknown sort field %q", field)
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		out.Desc = true
	default:
		return Sort{}, invalidInput("unknown sort direction %q", dir)
	}
	return out, nil
}

func (o Sort) less(a, b model.Reservation) bool {
	var c int
	switch o.Field {
	case SortEndTime:
		c = a.EndTime.Compare(b.EndTime)
	case SortCreatedAt:
		c = a.CreatedAt.Compare(b.CreatedAt)
	case SortStatus:
		c = strings.Compare(string(a.Status), string(b.Status))
	default:
		c = a.StartTime.Compare(b.StartTime)
	}
	if c == 0 {
		c = strings.Compare(a.ID, b.ID)
	}
	if o.Desc {
		return c > 0
	}
	return c < 0
}

// ListFilter is the query accepted by List.  Empty fields do not filter.
type ListFilter struct {
	ClassroomID string
	UserID      string
	Status      model.ReservationStatus
	Sort        Sort
	Limit       int
	FutureOnly  bool
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultListLimit
	case n > MaxListLimit:
		return MaxListLimit
	}
	return n
}

// List returns reservations matching f.  Members are always narrowed to
// their own reservations, whatever UserID they pass.  Administrators may
// filter by any combination of classroom, user and status; ids they pass
// must exist.
func (s *ReservationService) List(ctx context.Context, actor model.Actor, f ListFilter) ([]model.Reservation, error) {
	if f.Status != "" {
		if _, ok := model.ParseStatus(string(f.Status)); !ok {
			return nil, invalidInput("unknown status %q", f.Status)
		}
	}
	q := model.ReservationFilter{
		ClassroomID: strings.TrimSpace(f.ClassroomID),
		UserID:      strings.TrimSpace(f.UserID),
		Status:      f.Status,
	}
	if !Allowed(OpListAll, actor, Resource{}) {
		q.UserID = actor.UserID
	} else if q.UserID != "" {
		if _, err := s.users.GetByID(ctx, q.UserID); err != nil {
			return nil, lookupErr(err, "user", q.UserID)
		}
	}
	if q.ClassroomID != "" {
		if _, err := s.classrooms.GetByID(ctx, q.ClassroomID); err != nil {
			return nil, lookupErr(err, "classroom", q.ClassroomID)
		}
	}
	if f.FutureOnly {
		q.StartAfter = normTime(s.now())
	}
	rows, err := s.store.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}
	return sortAndLimit(rows, f.Sort, f.Limit), nil
}

func sortAndLimit(rows []model.Reservation, o Sort, limit int) []model.Reservation {
	if o.Field == "" {
		o.Field = SortStartTime
	}
	sort.SliceStable(rows, func(i, j int) bool { return o.less(rows[i], rows[j]) })
	if n := clampLimit(limit); len(rows) > n {
		rows = rows[:n]
	}
	if rows == nil {
		rows = []model.Reservation{}
	}
	return rows
}

// Upcoming lists reservations starting after now, soonest first.  Members
// get only their own CONFIRMED reservations.
func (s *ReservationService) Upcoming(ctx context.Context, actor model.Actor, limit int) ([]model.Reservation, error) {
	q := model.ReservationFilter{StartAfter: normTime(s.now())}
	if !actor.IsAdmin() {
		q.UserID = actor.UserID
		q.Status = model.StatusConfirmed
	}
	rows, err := s.store.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}
	return sortAndLimit(rows, Sort{Field: SortStartTime}, limit), nil
}

// Current lists CONFIRMED reservations whose window contains now.
func (s *ReservationService) Current(ctx context.Context) ([]model.Reservation, error) {
	now := normTime(s.now())
	rows, err := s.store.FindAll(ctx, model.ReservationFilter{Status: model.StatusConfirmed, ActiveAt: now})
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if inProgress(r, now) {
			out = append(out, r)
		}
	}
	return sortAndLimit(out, Sort{Field: SortStartTime}, MaxListLimit), nil
}

func inProgress(r model.Reservation, now time.Time) bool {
	return r.Status == model.StatusConfirmed && !r.StartTime.After(now) && now.Before(r.EndTime)
}
