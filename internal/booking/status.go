// internal/booking/status.go
package booking

// Status is a booking lifecycle state. The integer values are stored as-is.
type Status int64

const (
	StatusIncoming  Status = 1
	StatusConfirmed Status = 2
	StatusRejected  Status = 3
	StatusDeleted   Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusIncoming:
		return "incoming"
	case StatusConfirmed:
		return "confirmed"
	case StatusRejected:
		return "rejected"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

func (s Status) Valid() bool {
	return s >= StatusIncoming && s <= StatusDeleted
}

// Terminal reports whether no transition may originate from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusDeleted
}

// transitions is the full state machine. Absent edges are forbidden; there is
// no administrative override back to an earlier state.
var transitions = map[Status][]Status{
	StatusIncoming:  {StatusConfirmed, StatusRejected, StatusDeleted},
	StatusConfirmed: {StatusDeleted},
}

// CanTransitionTo reports whether the edge s -> to exists.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}
