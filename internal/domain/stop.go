package domain

import "time"

// Per-stop delivery status.
type StopStatus string

const (
	StopPending     StopStatus = "pending"
	StopApproaching StopStatus = "approaching"
	StopArrived     StopStatus = "arrived"
	StopCompleted   StopStatus = "completed"
	StopSkipped     StopStatus = "skipped"
	StopFailed      StopStatus = "failed"
)

// stopTransitions encodes pending → approaching → arrived → completed with
// skipped/failed as terminal alternatives from any non-terminal state.
// Intermediate states may be skipped: drivers do not reliably report each one.
var stopTransitions = map[StopStatus][]StopStatus{
	StopPending:     {StopApproaching, StopArrived, StopCompleted, StopSkipped, StopFailed},
	StopApproaching: {StopArrived, StopCompleted, StopSkipped, StopFailed},
	StopArrived:     {StopCompleted, StopSkipped, StopFailed},
	StopCompleted:   {},
	StopSkipped:     {},
	StopFailed:      {},
}

func (s StopStatus) CanTransitionTo(next StopStatus) bool {
	for _, allowed := range stopTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s StopStatus) IsTerminal() bool {
	return s == StopCompleted || s == StopSkipped || s == StopFailed
}

// CountsAsDone reports whether the stop contributes to a route's
// completed-stop counter (completed, skipped and failed all do).
func (s StopStatus) CountsAsDone() bool { return s.IsTerminal() }

// ParseStopStatus validates a raw status value against the fixed enumeration.
func ParseStopStatus(raw string) (StopStatus, bool) {
	s := StopStatus(raw)
	_, ok := stopTransitions[s]
	return s, ok
}

// Represents one ordered waypoint on a route, linked to a delivery booking.
// Seq positions within a route are a contiguous permutation of 1..N.
type RouteStop struct {
	ID                 int64
	RouteID            int64
	BookingID          int64
	Seq                int
	Address            string
	Coords             *Coordinates
	WindowEnd          *string // "HH:MM"
	ServiceMins        int
	EstimatedArrival   *string // "HH:MM"
	EstimatedDeparture *string // "HH:MM"
	ActualArrival      *time.Time
	ActualDeparture    *time.Time
	DistanceFromPrevKm float64
	Status             StopStatus
	Notes              *string
}
