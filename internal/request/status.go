// internal/request/status.go
//
// Lifecycle status enumeration and the transition table for service
// requests. The backend is the system of record; this table exists so the
// client can reject impossible actions before spending a network round trip.

package request

// Status is the lifecycle state of a service request as reported by the
// backend. Values travel over the wire as strings.
type Status string

const (
	StatusPending    Status = "pending"
	StatusOffered    Status = "offered"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusExpired    Status = "expired"
)

// Label returns the display name used on dashboards.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusOffered:
		return "Offered"
	case StatusAccepted:
		return "Accepted"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusExpired:
		return "Expired"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOffered, StatusAccepted, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether the request can never change state again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// Active reports whether the request counts toward the homeowner's
// active-request total.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusInProgress
}

// Assigned reports whether a provider assignment exists at this status.
// Provider contact fields on a request are populated exactly when this
// returns true.
func (s Status) Assigned() bool {
	return s == StatusAccepted || s == StatusInProgress || s == StatusCompleted
}

// Role identifies which side of the marketplace triggers a transition.
type Role string

const (
	RoleHomeowner Role = "homeowner"
	RoleProvider  Role = "provider"
	RoleAdmin     Role = "admin"
)

// Action is a client-triggered lifecycle transition.
type Action string

const (
	ActionCancel   Action = "cancel"
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
)

type transition struct {
	role Role
	from []Status
	to   Status
}

// transitions is the closed table of client-triggered moves. The
// system-owned moves (matching to offered, timeout to expired) never
// originate here.
var transitions = map[Action]transition{
	ActionCancel:   {role: RoleHomeowner, from: []Status{StatusPending, StatusOffered, StatusAccepted}, to: StatusCancelled},
	ActionAccept:   {role: RoleProvider, from: []Status{StatusOffered}, to: StatusAccepted},
	ActionReject:   {role: RoleProvider, from: []Status{StatusOffered}, to: StatusOffered},
	ActionStart:    {role: RoleProvider, from: []Status{StatusAccepted}, to: StatusInProgress},
	ActionComplete: {role: RoleProvider, from: []Status{StatusInProgress}, to: StatusCompleted},
}

// Allowed reports whether action may be taken on a request currently at
// status by an actor of the given role.
func Allowed(status Status, action Action, role Role) bool {
	tr, ok := transitions[action]
	if !ok || tr.role != role {
		return false
	}
	for _, s := range tr.from {
		if s == status {
			return true
		}
	}
	return false
}

// Result returns the status a successful action produces. The second
// return is false for unknown actions.
func Result(action Action) (Status, bool) {
	tr, ok := transitions[action]
	if !ok {
		return "", false
	}
	return tr.to, true
}

// ActorRole returns the role required to trigger action.
func ActorRole(action Action) (Role, bool) {
	tr, ok := transitions[action]
	if !ok {
		return "", false
	}
	return tr.role, true
}
