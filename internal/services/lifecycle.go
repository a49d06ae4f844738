package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
)

// Lifecycle owns the route state machine and driver/vehicle (re)assignment.
// Every transition is validated against the domain transition table before any
// row is touched.
type Lifecycle struct {
	store ports.Store
	log   zerolog.Logger
}

func NewLifecycle(store ports.Store, log zerolog.Logger) *Lifecycle {
	return &Lifecycle{store: store, log: log.With().Str("component", "lifecycle").Logger()}
}

// AssignDriver sets (or replaces) a route's driver and optional vehicle.
// Status advances to assigned only from planned/optimized; a route already
// underway keeps its status. The driver identity is propagated onto every
// booking on the route whose driver differs.
func (l *Lifecycle) AssignDriver(ctx context.Context, routeID, driverID int64, vehicleID *int64) (route *domain.Route, err error) {
	defer obs.Time(ctx, l.log, "lifecycle.AssignDriver")(&err)

	route, err = l.store.Routes().Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("assign driver: route %d: %w", routeID, err)
	}
	if route.Status.IsTerminal() {
		return nil, fmt.Errorf("assign driver: route %d has status %q: %w",
			routeID, route.Status, domain.ErrInvalidTransition)
	}

	driver, err := l.store.Drivers().Get(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("assign driver: driver %d: %w", driverID, err)
	}
	if !driver.Active() {
		return nil, fmt.Errorf("assign driver: driver %d is inactive: %w", driverID, domain.ErrInvalidInput)
	}

	if vehicleID != nil {
		if _, err := l.store.Vehicles().Get(ctx, *vehicleID); err != nil {
			return nil, fmt.Errorf("assign driver: vehicle %d: %w", *vehicleID, err)
		}
	}

	err = l.store.WithinTx(ctx, func(r ports.Repos) error {
		route.DriverID = &driver.ID
		if vehicleID != nil {
			route.VehicleID = vehicleID
		}
		if route.Status == domain.RoutePlanned || route.Status == domain.RouteOptimized {
			route.Status = domain.RouteAssigned
		}
		if err := r.Routes().Update(ctx, route); err != nil {
			return fmt.Errorf("update route: %w", err)
		}

		bookings, err := r.Bookings().ListByRoute(ctx, routeID)
		if err != nil {
			return fmt.Errorf("list route bookings: %w", err)
		}
		for _, b := range bookings {
			if b.DriverID != nil && *b.DriverID == driver.ID {
				continue
			}
			b.DriverID = &driver.ID
			if err := r.Bookings().Update(ctx, b); err != nil {
				return fmt.Errorf("update booking %d: %w", b.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assign driver: route %d: %w", routeID, err)
	}

	l.log.Info().Int64("route_id", routeID).Int64("driver_id", driverID).Msg("driver assigned")
	return route, nil
}

// Start transitions a route to in_progress and marks the driver on-route.
func (l *Lifecycle) Start(ctx context.Context, routeID int64) (route *domain.Route, err error) {
	defer obs.Time(ctx, l.log, "lifecycle.Start")(&err)

	route, err = l.store.Routes().Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("start route: route %d: %w", routeID, err)
	}
	if !route.Status.CanTransitionTo(domain.RouteInProgress) {
		return nil, fmt.Errorf("start route: route %d has status %q: %w",
			routeID, route.Status, domain.ErrInvalidTransition)
	}

	now := time.Now()
	err = l.store.WithinTx(ctx, func(r ports.Repos) error {
		route.Status = domain.RouteInProgress
		route.StartedAt = &now
		if err := r.Routes().Update(ctx, route); err != nil {
			return fmt.Errorf("update route: %w", err)
		}
		if route.DriverID != nil {
			if err := r.Drivers().SetStatus(ctx, *route.DriverID, domain.DriverOnRoute); err != nil {
				return fmt.Errorf("mark driver on-route: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start route: route %d: %w", routeID, err)
	}

	l.log.Info().Int64("route_id", routeID).Msg("route started")
	return route, nil
}

// Complete transitions an in-progress route to completed and frees the driver.
func (l *Lifecycle) Complete(ctx context.Context, routeID int64) (route *domain.Route, err error) {
	defer obs.Time(ctx, l.log, "lifecycle.Complete")(&err)

	route, err = l.store.Routes().Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("complete route: route %d: %w", routeID, err)
	}
	if !route.Status.CanTransitionTo(domain.RouteCompleted) {
		return nil, fmt.Errorf("complete route: route %d has status %q: %w",
			routeID, route.Status, domain.ErrInvalidTransition)
	}

	now := time.Now()
	err = l.store.WithinTx(ctx, func(r ports.Repos) error {
		route.Status = domain.RouteCompleted
		route.CompletedAt = &now
		if err := r.Routes().Update(ctx, route); err != nil {
			return fmt.Errorf("update route: %w", err)
		}
		if route.DriverID != nil {
			if err := r.Drivers().SetStatus(ctx, *route.DriverID, domain.DriverAvailable); err != nil {
				return fmt.Errorf("free driver: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete route: route %d: %w", routeID, err)
	}

	l.log.Info().Int64("route_id", routeID).Msg("route completed")
	return route, nil
}

// Cancel aborts a route from any non-terminal state, freeing the driver and
// the date's reservation.
func (l *Lifecycle) Cancel(ctx context.Context, routeID int64) (route *domain.Route, err error) {
	defer obs.Time(ctx, l.log, "lifecycle.Cancel")(&err)

	route, err = l.store.Routes().Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("cancel route: route %d: %w", routeID, err)
	}
	if !route.Status.CanTransitionTo(domain.RouteCancelled) {
		return nil, fmt.Errorf("cancel route: route %d has status %q: %w",
			routeID, route.Status, domain.ErrInvalidTransition)
	}

	err = l.store.WithinTx(ctx, func(r ports.Repos) error {
		route.Status = domain.RouteCancelled
		if err := r.Routes().Update(ctx, route); err != nil {
			return fmt.Errorf("update route: %w", err)
		}
		if route.DriverID != nil {
			if err := r.Drivers().SetStatus(ctx, *route.DriverID, domain.DriverAvailable); err != nil {
				return fmt.Errorf("free driver: %w", err)
			}
			if err := r.Drivers().Release(ctx, *route.DriverID, route.Date); err != nil {
				return fmt.Errorf("release reservation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cancel route: route %d: %w", routeID, err)
	}

	l.log.Info().Int64("route_id", routeID).Msg("route cancelled")
	return route, nil
}

// Reorder overwrites a route's stop sequence with the given id order.
// Estimated times are NOT recomputed here, unlike Optimize; callers wanting
// fresh ETAs run optimization afterwards.
func (l *Lifecycle) Reorder(ctx context.Context, routeID int64, stopIDs []int64) (err error) {
	defer obs.Time(ctx, l.log, "lifecycle.Reorder")(&err)

	if len(stopIDs) == 0 {
		return fmt.Errorf("reorder: stop order is required: %w", domain.ErrInvalidInput)
	}

	if _, err := l.store.Routes().Get(ctx, routeID); err != nil {
		return fmt.Errorf("reorder: route %d: %w", routeID, err)
	}

	stops, err := l.store.Stops().ListByRoute(ctx, routeID)
	if err != nil {
		return fmt.Errorf("reorder: list stops for route %d: %w", routeID, err)
	}

	byID := make(map[int64]*domain.RouteStop, len(stops))
	for _, s := range stops {
		byID[s.ID] = s
	}
	if len(stopIDs) != len(stops) {
		return fmt.Errorf("reorder: got %d stop ids, route %d has %d stops: %w",
			len(stopIDs), routeID, len(stops), domain.ErrInvalidInput)
	}
	seen := make(map[int64]struct{}, len(stopIDs))
	for _, id := range stopIDs {
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("reorder: stop %d does not belong to route %d: %w",
				id, routeID, domain.ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("reorder: stop %d listed twice: %w", id, domain.ErrInvalidInput)
		}
		seen[id] = struct{}{}
	}

	err = l.store.WithinTx(ctx, func(r ports.Repos) error {
		for i, id := range stopIDs {
			stop := byID[id]
			stop.Seq = i + 1
			if err := r.Stops().Update(ctx, stop); err != nil {
				return fmt.Errorf("update stop %d: %w", id, err)
			}

			booking, err := r.Bookings().Get(ctx, stop.BookingID)
			if err != nil {
				return fmt.Errorf("booking %d: %w", stop.BookingID, err)
			}
			order := i + 1
			booking.RouteOrder = &order
			if err := r.Bookings().Update(ctx, booking); err != nil {
				return fmt.Errorf("update booking %d: %w", booking.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reorder: route %d: %w", routeID, err)
	}

	l.log.Info().Int64("route_id", routeID).Int("stops", len(stopIDs)).Msg("route reordered")
	return nil
}
