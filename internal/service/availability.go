package service

import (
	"context"
	"time"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

// Overlaps reports whether the half-open windows [s1,e1) and [s2,e2)
// share an instant.  Windows that only touch at a boundary do not.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// OverlapFinder is the slice of the persistence collaborator the oracle
// needs.
type OverlapFinder interface {
	FindConfirmedOverlap(ctx context.Context, classroomID string, start, end time.Time, excludeID string) ([]model.Reservation, error)
}

// Oracle decides whether a classroom is free for a window.  It only reads;
// callers that write based on its answer must call it with the context
// of the transaction holding the classroom lock.
type Oracle struct {
	finder OverlapFinder
}

// NewOracle returns an Oracle backed by finder.
func NewOracle(finder OverlapFinder) Oracle { return Oracle{finder: finder} }

// Conflicts returns the CONFIRMED reservations on classroomID whose window
// overlaps [start,end), ignoring excludeID.  Rows returned by the store are
// re-checked so a loose store query cannot produce false conflicts.
func (o Oracle) Conflicts(ctx context.Context, classroomID string, start, end time.Time, excludeID string) ([]model.Reservation, error) {
	rows, err := o.finder.FindConfirmedOverlap(ctx, classroomID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	var out []model.Reservation
	for _, r := range rows {
		if r.Status != model.StatusConfirmed || r.ClassroomID != classroomID {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if Overlaps(start, end, r.StartTime, r.EndTime) {
			out = append(out, r)
		}
	}
	return out, nil
}

// IsAvailable reports whether no CONFIRMED reservation other than
// excludeID overlaps [start,end) on classroomID.
func (o Oracle) IsAvailable(ctx context.Context, classroomID string, start, end time.Time, excludeID string) (bool, error) {
	c, err := o.Conflicts(ctx, classroomID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(c) == 0, nil
}

// validateWindow rejects empty or inverted windows.
func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return invalidInput("startTime and endTime are required")
	}
	if !start.Before(end) {
		return invalidInput("startTime must be before endTime")
	}
	return nil
}
