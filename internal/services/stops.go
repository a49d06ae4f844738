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

// StopTracker owns the per-stop state machine and its side effects on the
// linked booking and on route-level completion counters.
type StopTracker struct {
	store ports.Store
	log   zerolog.Logger
}

func NewStopTracker(store ports.Store, log zerolog.Logger) *StopTracker {
	return &StopTracker{store: store, log: log.With().Str("component", "stop_tracker").Logger()}
}

// UpdateStatus moves a stop through its state machine.
// The raw status must be one of the fixed enumeration; the transition must be
// allowed by the stop transition table. Terminal transitions recompute the
// owning route's completed-stop counter as |{completed, skipped, failed}|, so
// the counter never drifts past the stop total.
func (t *StopTracker) UpdateStatus(ctx context.Context, stopID int64, rawStatus string, notes *string) (stop *domain.RouteStop, err error) {
	defer obs.Time(ctx, t.log, "stop_tracker.UpdateStatus")(&err)

	status, ok := domain.ParseStopStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("update stop status: unknown status %q: %w", rawStatus, domain.ErrInvalidInput)
	}

	stop, err = t.store.Stops().Get(ctx, stopID)
	if err != nil {
		return nil, fmt.Errorf("update stop status: stop %d: %w", stopID, err)
	}
	if !stop.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("update stop status: stop %d cannot go %q -> %q: %w",
			stopID, stop.Status, status, domain.ErrInvalidTransition)
	}

	now := time.Now()
	err = t.store.WithinTx(ctx, func(r ports.Repos) error {
		stop.Status = status
		if notes != nil {
			stop.Notes = notes
		}

		var bookingStatus domain.BookingStatus
		switch status {
		case domain.StopApproaching:
			bookingStatus = domain.BookingEnRoute
		case domain.StopArrived:
			stop.ActualArrival = &now
			bookingStatus = domain.BookingInProgress
		case domain.StopCompleted:
			stop.ActualDeparture = &now
			bookingStatus = domain.BookingDelivered
		case domain.StopFailed:
			bookingStatus = domain.BookingFailed
		}

		if err := r.Stops().Update(ctx, stop); err != nil {
			return fmt.Errorf("update stop: %w", err)
		}

		if bookingStatus != "" {
			booking, err := r.Bookings().Get(ctx, stop.BookingID)
			if err != nil {
				return fmt.Errorf("booking %d: %w", stop.BookingID, err)
			}
			booking.Status = bookingStatus
			if err := r.Bookings().Update(ctx, booking); err != nil {
				return fmt.Errorf("update booking %d: %w", booking.ID, err)
			}
		}

		if status.CountsAsDone() {
			if err := t.recomputeCompleted(ctx, r, stop.RouteID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update stop status: stop %d: %w", stopID, err)
	}

	t.log.Info().
		Int64("stop_id", stopID).
		Str("status", string(status)).
		Msg("stop status updated")

	return stop, nil
}

// recomputeCompleted derives the route's completed-stop counter from the
// stops themselves rather than incrementing, so replays and skips cannot push
// it past the total.
func (t *StopTracker) recomputeCompleted(ctx context.Context, r ports.Repos, routeID int64) error {
	route, err := r.Routes().Get(ctx, routeID)
	if err != nil {
		return fmt.Errorf("route %d: %w", routeID, err)
	}

	stops, err := r.Stops().ListByRoute(ctx, routeID)
	if err != nil {
		return fmt.Errorf("list stops for route %d: %w", routeID, err)
	}

	done := 0
	for _, s := range stops {
		if s.Status.CountsAsDone() {
			done++
		}
	}

	route.CompletedStops = done
	if err := r.Routes().Update(ctx, route); err != nil {
		return fmt.Errorf("update route %d: %w", routeID, err)
	}
	return nil
}
