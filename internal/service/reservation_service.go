package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/queue"
	"github.com/iliyamo/classroom-reservation/internal/repository"
)

// ReservationService composes the availability oracle, the transition
// table and the authorization policy into the reservation operations.
// Every mutation runs in one store transaction, and any availability
// check it depends on runs after the classroom lock is taken inside that
// same transaction.
type ReservationService struct {
	store      ReservationStore
	classrooms ClassroomLookup
	users      UserLookup
	events     EventPublisher
	oracle     Oracle
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewReservationService wires the service.  events and logger may be nil.
func NewReservationService(store ReservationStore, classrooms ClassroomLookup, users UserLookup, events EventPublisher, logger *zap.Logger) *ReservationService {
	if store == nil || classrooms == nil || users == nil {
		panic("nil dependency passed to NewReservationService")
	}
	if events == nil {
		events = nopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		store:      store,
		classrooms: classrooms,
		users:      users,
		events:     events,
		oracle:     NewOracle(store),
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// CreateInput is the request to book a classroom.  TargetUserID is only
// honoured for administrators booking on behalf of someone else.
type CreateInput struct {
	ClassroomID  string
	TargetUserID string
	StartTime    time.Time
	EndTime      time.Time
	Purpose      string
}

// DetailsInput is a partial update; nil fields are left unchanged.
type DetailsInput struct {
	ClassroomID *string
	UserID      *string
	StartTime   *time.Time
	EndTime     *time.Time
	Purpose     *string
	Status      *model.ReservationStatus
}

// normTime drops sub-second precision, which DATETIME columns do not keep.
func normTime(t time.Time) time.Time { return t.UTC().Truncate(time.Second) }

// lookupErr turns repository not-found sentinels into ErrNotFound errors.
func lookupErr(err error, what, id string) error {
	switch {
	case errors.Is(err, repository.ErrClassroomNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrBuildingNotFound):
		return notFound("%s not found with id: %s", what, id)
	}
	return err
}

// ensureAvailable fails with ErrConflict naming the classroom and window
// when a confirmed reservation other than excludeID overlaps it.
func (s *ReservationService) ensureAvailable(ctx context.Context, room *model.Classroom, start, end time.Time, excludeID string) error {
	clashes, err := s.oracle.Conflicts(ctx, room.ID, start, end, excludeID)
	if err != nil {
		return err
	}
	if len(clashes) > 0 {
		return conflict("classroom %s (%s) is not available from %s to %s",
			room.Name, room.ID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// Create books a classroom in PENDING status.
func (s *ReservationService) Create(ctx context.Context, actor model.Actor, in CreateInput) (*model.Reservation, error) {
	classroomID := strings.TrimSpace(in.ClassroomID)
	if classroomID == "" {
		return nil, invalidInput("classroomId is required")
	}
	start, end := normTime(in.StartTime), normTime(in.EndTime)
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	ownerID, op := actor.UserID, OpCreate
	if t := strings.TrimSpace(in.TargetUserID); t != "" && t != actor.UserID {
		ownerID, op = t, OpCreateForOther
	}
	if err := Authorize(op, actor, Resource{OwnerID: ownerID}); err != nil {
		return nil, err
	}
	if ownerID != actor.UserID {
		if _, err := s.users.GetByID(ctx, ownerID); err != nil {
			return nil, lookupErr(err, "user", ownerID)
		}
	}

	res := &model.Reservation{
		ID:          s.newID(),
		ClassroomID: classroomID,
		UserID:      ownerID,
		StartTime:   start,
		EndTime:     end,
		Status:      model.StatusPending,
		Purpose:     strings.TrimSpace(in.Purpose),
	}
	err := s.store.Atomically(ctx, func(ctx context.Context) error {
		room, err := s.store.LockClassroom(ctx, classroomID)
		if err != nil {
			return lookupErr(err, "classroom", classroomID)
		}
		if err := s.ensureAvailable(ctx, room, start, end, ""); err != nil {
			return err
		}
		now := normTime(s.now())
		res.CreatedAt, res.UpdatedAt = now, now
		return s.store.Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("classroom_id", res.ClassroomID),
		zap.String("user_id", res.UserID),
		zap.String("actor_id", actor.UserID))
	s.publish(ctx, queue.EventCreated, actor, "", res)
	return res, nil
}

// Get returns a single reservation the actor is allowed to see.
func (s *ReservationService) Get(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidInput("reservation id is required")
	}
	res, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "reservation", id)
	}
	if err := Authorize(OpRead, actor, Resource{OwnerID: res.UserID, Status: res.Status}); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateStatus applies a status transition.  Confirming re-runs the
// availability check under the classroom lock so two overlapping
// confirmations can never both commit.
func (s *ReservationService) UpdateStatus(ctx context.Context, actor model.Actor, id string, to model.ReservationStatus) (*model.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidInput("reservation id is required")
	}
	if _, ok := model.ParseStatus(string(to)); !ok {
		return nil, invalidInput("unknown status %q", to)
	}
	var res *model.Reservation
	var from model.ReservationStatus
	err := s.store.Atomically(ctx, func(ctx context.Context) error {
		cur, err := s.store.FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, "reservation", id)
		}
		if err := CheckTransition(cur.Status, to); err != nil {
			return err
		}
		if err := Authorize(OpUpdateStatus, actor, Resource{OwnerID: cur.UserID, Status: cur.Status, Target: to}); err != nil {
			return err
		}
		if to == model.StatusConfirmed {
			room, err := s.store.LockClassroom(ctx, cur.ClassroomID)
			if err != nil {
				return lookupErr(err, "classroom", cur.ClassroomID)
			}
			if err := s.ensureAvailable(ctx, room, cur.StartTime, cur.EndTime, cur.ID); err != nil {
				return err
			}
		}
		from = cur.Status
		cur.Status = to
		cur.UpdatedAt = normTime(s.now())
		if err := s.store.Update(ctx, cur); err != nil {
			return err
		}
		res = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation status changed",
		zap.String("reservation_id", res.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.UserID))
	s.publish(ctx, queue.EventStatusChanged, actor, from, res)
	return res, nil
}

// UpdateDetails merges the supplied fields into the reservation.  A status
// supplied here goes through the same transition table as UpdateStatus.
// Availability is re-checked, excluding the reservation itself, whenever
// the classroom or window changes or the result is CONFIRMED.
func (s *ReservationService) UpdateDetails(ctx context.Context, actor model.Actor, id string, in DetailsInput) (*model.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidInput("reservation id is required")
	}
	if in.ClassroomID != nil && strings.TrimSpace(*in.ClassroomID) == "" {
		return nil, invalidInput("classroomId must not be empty")
	}
	if in.StartTime != nil && in.EndTime != nil {
		if err := validateWindow(normTime(*in.StartTime), normTime(*in.EndTime)); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		if _, ok := model.ParseStatus(string(*in.Status)); !ok {
			return nil, invalidInput("unknown status %q", *in.Status)
		}
	}

	var res *model.Reservation
	var from model.ReservationStatus
	err := s.store.Atomically(ctx, func(ctx context.Context) error {
		cur, err := s.store.FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, "reservation", id)
		}
		statusChange := in.Status != nil && *in.Status != cur.Status
		if statusChange {
			if err := CheckTransition(cur.Status, *in.Status); err != nil {
				return err
			}
		}
		if err := Authorize(OpUpdateDetails, actor, Resource{OwnerID: cur.UserID, Status: cur.Status}); err != nil {
			return err
		}
		from = cur.Status
		next := *cur

		if in.ClassroomID != nil {
			next.ClassroomID = strings.TrimSpace(*in.ClassroomID)
		}
		if in.StartTime != nil {
			next.StartTime = normTime(*in.StartTime)
		}
		if in.EndTime != nil {
			next.EndTime = normTime(*in.EndTime)
		}
		if in.Purpose != nil {
			next.Purpose = strings.TrimSpace(*in.Purpose)
		}
		if err := validateWindow(next.StartTime, next.EndTime); err != nil {
			return err
		}

		if in.UserID != nil && strings.TrimSpace(*in.UserID) != "" && strings.TrimSpace(*in.UserID) != cur.UserID {
			if !actor.IsAdmin() {
				return denied("only administrators can reassign a reservation")
			}
			uid := strings.TrimSpace(*in.UserID)
			if _, err := s.users.GetByID(ctx, uid); err != nil {
				return lookupErr(err, "user", uid)
			}
			next.UserID = uid
		}
		if statusChange {
			if !actor.IsAdmin() {
				return denied("only administrators can change the status of a reservation")
			}
			next.Status = *in.Status
		}

		roomChanged := next.ClassroomID != cur.ClassroomID
		windowChanged := !next.StartTime.Equal(cur.StartTime) || !next.EndTime.Equal(cur.EndTime)
		if roomChanged || windowChanged || next.Status == model.StatusConfirmed {
			room, err := s.lockRooms(ctx, cur.ClassroomID, next.ClassroomID)
			if err != nil {
				return err
			}
			if err := s.ensureAvailable(ctx, room, next.StartTime, next.EndTime, next.ID); err != nil {
				return err
			}
		}

		next.UpdatedAt = normTime(s.now())
		if err := s.store.Update(ctx, &next); err != nil {
			return err
		}
		res = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation updated",
		zap.String("reservation_id", res.ID),
		zap.String("classroom_id", res.ClassroomID),
		zap.String("status", string(res.Status)),
		zap.String("actor_id", actor.UserID))
	typ := queue.EventUpdated
	if res.Status != from {
		typ = queue.EventStatusChanged
	}
	s.publish(ctx, typ, actor, from, res)
	return res, nil
}

// lockRooms locks the old and new classroom in id order so two updates
// moving reservations in opposite directions cannot deadlock.  It returns
// the new classroom.
func (s *ReservationService) lockRooms(ctx context.Context, oldID, newID string) (*model.Classroom, error) {
	ids := []string{newID}
	if oldID != newID {
		ids = append(ids, oldID)
		sort.Strings(ids)
	}
	var target *model.Classroom
	for _, id := range ids {
		room, err := s.store.LockClassroom(ctx, id)
		if err != nil {
			return nil, lookupErr(err, "classroom", id)
		}
		if id == newID {
			target = room
		}
	}
	return target, nil
}

// Cancel moves a PENDING or CONFIRMED reservation to CANCELLED.
func (s *ReservationService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidInput("reservation id is required")
	}
	var res *model.Reservation
	var from model.ReservationStatus
	err := s.store.Atomically(ctx, func(ctx context.Context) error {
		cur, err := s.store.FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, "reservation", id)
		}
		if err := Authorize(OpCancel, actor, Resource{OwnerID: cur.UserID, Status: cur.Status, Target: model.StatusCancelled}); err != nil {
			return err
		}
		if err := CheckTransition(cur.Status, model.StatusCancelled); err != nil {
			return err
		}
		from = cur.Status
		cur.Status = model.StatusCancelled
		cur.UpdatedAt = normTime(s.now())
		if err := s.store.Update(ctx, cur); err != nil {
			return err
		}
		res = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation cancelled", zap.String("reservation_id", res.ID), zap.String("actor_id", actor.UserID))
	s.publish(ctx, queue.EventCancelled, actor, from, res)
	return res, nil
}

// Delete removes a reservation regardless of its status.
func (s *ReservationService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalidInput("reservation id is required")
	}
	var gone *model.Reservation
	err := s.store.Atomically(ctx, func(ctx context.Context) error {
		cur, err := s.store.FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, "reservation", id)
		}
		if err := Authorize(OpDelete, actor, Resource{OwnerID: cur.UserID, Status: cur.Status}); err != nil {
			return err
		}
		if err := s.store.DeleteByID(ctx, id); err != nil {
			return lookupErr(err, "reservation", id)
		}
		gone = cur
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("reservation deleted", zap.String("reservation_id", id), zap.String("actor_id", actor.UserID))
	s.publish(ctx, queue.EventDeleted, actor, gone.Status, gone)
	return nil
}

func (s *ReservationService) publish(ctx context.Context, typ string, actor model.Actor, from model.ReservationStatus, r *model.Reservation) {
	ev := queue.ReservationEvent{
		Type:          typ,
		ReservationID: r.ID,
		ClassroomID:   r.ClassroomID,
		UserID:        r.UserID,
		ActorID:       actor.UserID,
		FromStatus:    string(from),
		ToStatus:      string(r.Status),
		StartTime:     r.StartTime.UTC().Format(time.RFC3339),
		EndTime:       r.EndTime.UTC().Format(time.RFC3339),
		OccurredAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish reservation event failed",
			zap.String("type", typ),
			zap.String("reservation_id", r.ID),
			zap.Error(err))
	}
}
