package model

import (
	"strings"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusRejected  ReservationStatus = "REJECTED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// ParseStatus normalises s and reports whether it names a known status.
func ParseStatus(s string) (ReservationStatus, bool) {
	st := ReservationStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled:
		return st, true
	}
	return "", false
}

// Reservation records a user's booking of a classroom for the half-open
// window [StartTime, EndTime).  ClassroomID and UserID are references,
// not ownership.  All timestamps are stored in UTC.
//
// Fields:
//  ID          – uuid primary key.
//  ClassroomID – booked classroom.
//  UserID      – user the booking is for.
//  StartTime   – inclusive start of the window.
//  EndTime     – exclusive end of the window, after StartTime.
//  Status      – PENDING, CONFIRMED, REJECTED or CANCELLED.
//  Purpose     – free text supplied by the requester.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
	ID          string            `json:"id"`          // reservations.id
	ClassroomID string            `json:"classroomId"` // reservations.classroom_id
	UserID      string            `json:"userId"`      // reservations.user_id
	StartTime   time.Time         `json:"startTime"`   // reservations.start_time
	EndTime     time.Time         `json:"endTime"`     // reservations.end_time
	Status      ReservationStatus `json:"status"`      // reservations.status
	Purpose     string            `json:"purpose"`     // reservations.purpose
	CreatedAt   time.Time         `json:"createdAt"`   // reservations.created_at
	UpdatedAt   time.Time         `json:"updatedAt"`   // reservations.updated_at
}

// ReservationFilter narrows a reservation listing.  Zero values mean
// "no constraint".  StartAfter, when non-zero, keeps reservations whose
// StartTime is strictly after it.  ActiveAt, when non-zero, keeps
// reservations whose window contains that instant.
type ReservationFilter struct {
	ClassroomID string
	UserID      string
	Status      ReservationStatus
	StartAfter  time.Time
	ActiveAt    time.Time
}
