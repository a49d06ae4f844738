package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-route-service/internal/adapters/repositories"
	"dispatch-route-service/internal/domain"
)

func seedLifecycleRoute(store *repositories.MemoryStore, status domain.RouteStatus) {
	store.PutDriver(domain.Driver{ID: 7, Name: "Dana", Status: domain.DriverAvailable})
	store.PutVehicle(domain.Vehicle{ID: 3, Name: "Van 3", Active: true})
	store.PutRoute(domain.Route{
		ID: 1, RouteNumber: "RT-000001", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status: status, StartLocationID: 1, StartTime: "08:00", TotalStops: 2,
	})

	rid := int64(1)
	for i, bookingID := range []int64{11, 12} {
		order := i + 1
		store.PutBooking(domain.DeliveryBooking{
			ID: bookingID, Date: time.Now(), Address: "somewhere",
			Status: domain.BookingAssigned, RouteID: &rid, RouteOrder: &order,
		})
		store.PutStop(domain.RouteStop{
			ID: int64(i + 1), RouteID: 1, BookingID: bookingID, Seq: i + 1,
			Coords: coords(43.65+float64(i)*0.01, -79.38), ServiceMins: 5,
			EstimatedArrival: strp("08:10"), Status: domain.StopPending,
		})
	}
}

func TestAssignDriverAdvancesPlannedRoute(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RoutePlanned)
	lc := NewLifecycle(store, zerolog.Nop())

	vehicleID := int64(3)
	route, err := lc.AssignDriver(context.Background(), 1, 7, &vehicleID)
	require.NoError(t, err)

	assert.Equal(t, domain.RouteAssigned, route.Status)
	require.NotNil(t, route.DriverID)
	assert.Equal(t, int64(7), *route.DriverID)
	require.NotNil(t, route.VehicleID)
	assert.Equal(t, int64(3), *route.VehicleID)

	// Driver identity propagates onto the route's bookings.
	for _, bookingID := range []int64{11, 12} {
		b, err := store.Bookings().Get(context.Background(), bookingID)
		require.NoError(t, err)
		require.NotNil(t, b.DriverID)
		assert.Equal(t, int64(7), *b.DriverID)
	}
}

func TestAssignDriverKeepsInProgressStatus(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RouteInProgress)
	lc := NewLifecycle(store, zerolog.Nop())

	route, err := lc.AssignDriver(context.Background(), 1, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteInProgress, route.Status, "reassignment mid-route keeps status")
	require.NotNil(t, route.DriverID)
}

func TestAssignDriverRejectsTerminalRoute(t *testing.T) {
	for _, status := range []domain.RouteStatus{domain.RouteCompleted, domain.RouteCancelled} {
		store := repositories.NewMemoryStore()
		seedLifecycleRoute(store, status)
		lc := NewLifecycle(store, zerolog.Nop())

		_, err := lc.AssignDriver(context.Background(), 1, 7, nil)
		require.ErrorIs(t, err, domain.ErrInvalidTransition, "status %s", status)
	}
}

func TestAssignDriverRejectsInactiveDriver(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RoutePlanned)
	store.PutDriver(domain.Driver{ID: 8, Name: "Sam", Status: domain.DriverInactive})
	lc := NewLifecycle(store, zerolog.Nop())

	_, err := lc.AssignDriver(context.Background(), 1, 8, nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssignDriverUnknownVehicle(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RoutePlanned)
	lc := NewLifecycle(store, zerolog.Nop())

	vehicleID := int64(99)
	_, err := lc.AssignDriver(context.Background(), 1, 7, &vehicleID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStartMarksDriverOnRoute(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RouteAssigned)
	driverID := int64(7)
	route, _ := store.Routes().Get(context.Background(), 1)
	route.DriverID = &driverID
	require.NoError(t, store.Routes().Update(context.Background(), route))

	lc := NewLifecycle(store, zerolog.Nop())
	route, err := lc.Start(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.RouteInProgress, route.Status)
	require.NotNil(t, route.StartedAt)

	d, err := store.Drivers().Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.DriverOnRoute, d.Status)
}

func TestStartAllowsForwardJumpFromPlanned(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RoutePlanned)
	lc := NewLifecycle(store, zerolog.Nop())

	route, err := lc.Start(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteInProgress, route.Status)
}

func TestCompleteFreesDriver(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RouteInProgress)
	driverID := int64(7)
	route, _ := store.Routes().Get(context.Background(), 1)
	route.DriverID = &driverID
	require.NoError(t, store.Routes().Update(context.Background(), route))
	require.NoError(t, store.Drivers().SetStatus(context.Background(), 7, domain.DriverOnRoute))

	lc := NewLifecycle(store, zerolog.Nop())
	route, err := lc.Complete(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.RouteCompleted, route.Status)
	require.NotNil(t, route.CompletedAt)

	d, err := store.Drivers().Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.DriverAvailable, d.Status)
}

func TestCompleteRejectsRouteNotInProgress(t *testing.T) {
	for _, status := range []domain.RouteStatus{domain.RoutePlanned, domain.RouteAssigned, domain.RouteCancelled} {
		store := repositories.NewMemoryStore()
		seedLifecycleRoute(store, status)
		lc := NewLifecycle(store, zerolog.Nop())

		_, err := lc.Complete(context.Background(), 1)
		require.ErrorIs(t, err, domain.ErrInvalidTransition, "status %s", status)
	}
}

func TestCancelReleasesDriverAndReservation(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RouteAssigned)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	driverID := int64(7)
	route, _ := store.Routes().Get(context.Background(), 1)
	route.DriverID = &driverID
	require.NoError(t, store.Routes().Update(context.Background(), route))

	held, err := store.Drivers().Reserve(context.Background(), 7, date)
	require.NoError(t, err)
	require.True(t, held)

	lc := NewLifecycle(store, zerolog.Nop())
	route, err = lc.Cancel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteCancelled, route.Status)

	d, err := store.Drivers().Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.DriverAvailable, d.Status)

	// The reservation is gone, so the driver can be claimed again.
	held, err = store.Drivers().Reserve(context.Background(), 7, date)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestCancelRejectsCompletedRoute(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RouteCompleted)
	lc := NewLifecycle(store, zerolog.Nop())

	_, err := lc.Cancel(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReorderRewritesSequence(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RoutePlanned)
	lc := NewLifecycle(store, zerolog.Nop())

	require.NoError(t, lc.Reorder(context.Background(), 1, []int64{2, 1}))

	stops, err := store.Stops().ListByRoute(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, int64(2), stops[0].ID)
	assert.Equal(t, 1, stops[0].Seq)
	assert.Equal(t, int64(1), stops[1].ID)
	assert.Equal(t, 2, stops[1].Seq)

	// Booking order follows the stops.
	b, err := store.Bookings().Get(context.Background(), 12)
	require.NoError(t, err)
	require.NotNil(t, b.RouteOrder)
	assert.Equal(t, 1, *b.RouteOrder)
}

func TestReorderLeavesEstimatesUntouched(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedLifecycleRoute(store, domain.RoutePlanned)
	lc := NewLifecycle(store, zerolog.Nop())

	require.NoError(t, lc.Reorder(context.Background(), 1, []int64{2, 1}))

	stops, err := store.Stops().ListByRoute(context.Background(), 1)
	require.NoError(t, err)
	for _, s := range stops {
		require.NotNil(t, s.EstimatedArrival)
		assert.Equal(t, "08:10", *s.EstimatedArrival, "reorder does not recompute ETAs")
	}
}

func TestReorderValidatesPermutation(t *testing.T) {
	cases := map[string][]int64{
		"empty":          {},
		"missing a stop": {1},
		"foreign stop":   {1, 99},
		"duplicate":      {1, 1},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			store := repositories.NewMemoryStore()
			seedLifecycleRoute(store, domain.RoutePlanned)
			lc := NewLifecycle(store, zerolog.Nop())

			err := lc.Reorder(context.Background(), 1, ids)
			require.ErrorIs(t, err, domain.ErrInvalidInput)

			stops, err := store.Stops().ListByRoute(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stops[0].ID, "sequence untouched")
		})
	}
}

func TestReorderUnknownRoute(t *testing.T) {
	lc := NewLifecycle(repositories.NewMemoryStore(), zerolog.Nop())

	err := lc.Reorder(context.Background(), 42, []int64{1})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
