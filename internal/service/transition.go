package service

import "github.com/iliyamo/classroom-reservation/internal/model"

// transitions lists every legal status change.  REJECTED and CANCELLED
// are terminal and therefore have no row.
var transitions = map[model.ReservationStatus]map[model.ReservationStatus]bool{
	model.StatusPending: {
		model.StatusConfirmed: true,
		model.StatusRejected:  true,
		model.StatusCancelled: true,
	},
	model.StatusConfirmed: {
		model.StatusCancelled: true,
	},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to model.ReservationStatus) bool {
	return transitions[from][to]
}

// CheckTransition returns an ErrInvalidTransition error naming both
// statuses when from -> to is not allowed.  Who may perform a legal
// transition is decided by Authorize, not here.
func CheckTransition(from, to model.ReservationStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return newError(ErrInvalidTransition, "status transition not allowed: %s -> %s", from, to)
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s model.ReservationStatus) bool {
	return len(transitions[s]) == 0
}
