package domain

import "time"

// Lifecycle status of a route.
type RouteStatus string

const (
	RoutePlanned    RouteStatus = "planned"
	RouteOptimized  RouteStatus = "optimized"
	RouteAssigned   RouteStatus = "assigned"
	RouteInProgress RouteStatus = "in_progress"
	RouteCompleted  RouteStatus = "completed"
	RouteCancelled  RouteStatus = "cancelled"
)

// routeTransitions is the authoritative transition table for the route state
// machine: planned → optimized → assigned → in_progress → completed, with
// cancellation reachable from any non-terminal state. Forward jumps that skip
// optimization or explicit assignment are allowed (a planned route may start
// directly); moving backwards never is.
var routeTransitions = map[RouteStatus][]RouteStatus{
	RoutePlanned:    {RouteOptimized, RouteAssigned, RouteInProgress, RouteCancelled},
	RouteOptimized:  {RouteAssigned, RouteInProgress, RouteCancelled},
	RouteAssigned:   {RouteInProgress, RouteCancelled},
	RouteInProgress: {RouteCompleted, RouteCancelled},
	RouteCompleted:  {},
	RouteCancelled:  {},
}

func (s RouteStatus) CanTransitionTo(next RouteStatus) bool {
	for _, allowed := range routeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RouteStatus) IsTerminal() bool {
	return s == RouteCompleted || s == RouteCancelled
}

// Represents one driver's itinerary for one calendar date.
// Created by route generation; mutated by the lifecycle manager, the optimizer
// and the stop tracker; never deleted by this subsystem.
type Route struct {
	ID              int64
	RouteNumber     string
	Date            time.Time
	Status          RouteStatus
	DriverID        *int64
	VehicleID       *int64
	StartLocationID int64
	StartTime       string // "HH:MM" planned departure
	TotalStops      int
	CompletedStops  int
	TotalDistanceKm float64
	TotalDuration   int // minutes
	TotalWeightKg   float64
	StartedAt       *time.Time
	CompletedAt     *time.Time
	OptimizedAt     *time.Time
}
