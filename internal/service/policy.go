package service

import "github.com/iliyamo/classroom-reservation/internal/model"

// Operation names an action on a reservation that the policy can allow or
// deny.
type Operation string

const (
	OpCreate         Operation = "create"
	OpCreateForOther Operation = "create_for_other"
	OpRead           Operation = "read"
	OpListAll        Operation = "list_all"
	OpUpdateDetails  Operation = "update_details"
	OpUpdateStatus   Operation = "update_status"
	OpCancel         Operation = "cancel"
	OpDelete         Operation = "delete"
)

// Resource describes the reservation an operation targets.  OwnerID is
// the reservation's user (or, for creation, the user it is being created
// for).  Status is its current status and Target the requested one for
// status changes.
type Resource struct {
	OwnerID string
	Status  model.ReservationStatus
	Target  model.ReservationStatus
}

type rule struct {
	allow  func(a model.Actor, r Resource) bool
	reason string
}

func isOwner(a model.Actor, r Resource) bool {
	return a.UserID != "" && a.UserID == r.OwnerID
}

func ownerOrAdmin(a model.Actor, r Resource) bool {
	return a.IsAdmin() || isOwner(a, r)
}

var policy = map[Operation]rule{
	OpCreate: {
		allow:  isOwner,
		reason: "reservations can only be created for yourself",
	},
	OpCreateForOther: {
		allow:  func(a model.Actor, _ Resource) bool { return a.IsAdmin() },
		reason: "only administrators can create reservations for other users",
	},
	OpRead: {
		allow:  ownerOrAdmin,
		reason: "you can only view your own reservations",
	},
	OpListAll: {
		allow:  func(a model.Actor, _ Resource) bool { return a.IsAdmin() },
		reason: "only administrators can list all reservations",
	},
	OpUpdateDetails: {
		allow: func(a model.Actor, r Resource) bool {
			return a.IsAdmin() || (isOwner(a, r) && r.Status == model.StatusPending)
		},
		reason: "you can only modify your own reservations while they are PENDING",
	},
	OpUpdateStatus: {
		allow: func(a model.Actor, r Resource) bool {
			return a.IsAdmin() || (r.Target == model.StatusCancelled && isOwner(a, r))
		},
		reason: "only administrators can change the status of a reservation",
	},
	OpCancel: {
		allow:  ownerOrAdmin,
		reason: "you do not have permission to cancel this reservation",
	},
	OpDelete: {
		allow:  ownerOrAdmin,
		reason: "you do not have permission to delete this reservation",
	},
}

// Allowed reports whether actor may perform op on r.  Unknown operations
// are never allowed.
func Allowed(op Operation, actor model.Actor, r Resource) bool {
	p, ok := policy[op]
	return ok && p.allow(actor, r)
}

// Authorize returns an ErrPermissionDenied error when actor may not
// perform op on r.
func Authorize(op Operation, actor model.Actor, r Resource) error {
	if Allowed(op, actor, r) {
		return nil
	}
	if p, ok := policy[op]; ok {
		return denied("%s", p.reason)
	}
	return denied("unknown operation %q", op)
}
