// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the audit consumer.
package queue

// Event types carried in ReservationEvent.Type.
const (
	EventCreated       = "reservation.created"
	EventUpdated       = "reservation.updated"
	EventStatusChanged = "reservation.status_changed"
	EventCancelled     = "reservation.cancelled"
	EventDeleted       = "reservation.deleted"
)

// ReservationEvent is published after a reservation mutation commits.
// Timestamps are RFC3339 strings in UTC; FromStatus is empty for
// creation.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservation_id"`
	ClassroomID   string `json:"classroom_id"`
	UserID        string `json:"user_id"`
	ActorID       string `json:"actor_id"`
	FromStatus    string `json:"from_status,omitempty"`
	ToStatus      string `json:"to_status"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	OccurredAt    string `json:"occurred_at"`
}
