package service

import (
	"context"
	"time"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/queue"
)

// ReservationStore is the persistence collaborator for reservations.
//
// Atomically runs fn inside a single transaction; the transaction travels
// in the context handed to fn, and every other method called with that
// context joins it.  LockClassroom must only be called inside Atomically:
// it holds an exclusive lock on the classroom until the transaction ends
// and is the critical section guarding check-then-write on that room.
type ReservationStore interface {
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
	LockClassroom(ctx context.Context, classroomID string) (*model.Classroom, error)
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindAll(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
	FindConfirmedOverlap(ctx context.Context, classroomID string, start, end time.Time, excludeID string) ([]model.Reservation, error)
	Create(ctx context.Context, r *model.Reservation) error
	Update(ctx context.Context, r *model.Reservation) error
	DeleteByID(ctx context.Context, id string) error
}

// ClassroomLookup resolves classroom ids for validation.
type ClassroomLookup interface {
	GetByID(ctx context.Context, id string) (*model.Classroom, error)
}

// UserLookup resolves user ids for validation.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// EventPublisher receives reservation lifecycle events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.ReservationEvent) error { return nil }
