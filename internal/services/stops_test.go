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

func seedTrackedRoute(store *repositories.MemoryStore) {
	store.PutRoute(domain.Route{
		ID: 1, RouteNumber: "RT-000001", Date: time.Now(),
		Status: domain.RouteInProgress, StartLocationID: 1, StartTime: "08:00",
		TotalStops: 3,
	})
	rid := int64(1)
	for i, bookingID := range []int64{11, 12, 13} {
		order := i + 1
		store.PutBooking(domain.DeliveryBooking{
			ID: bookingID, Date: time.Now(), Address: "somewhere",
			Status: domain.BookingAssigned, RouteID: &rid, RouteOrder: &order,
		})
		store.PutStop(domain.RouteStop{
			ID: int64(i + 1), RouteID: 1, BookingID: bookingID, Seq: i + 1,
			Coords: coords(43.65, -79.38), ServiceMins: 5, Status: domain.StopPending,
		})
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedTrackedRoute(store)
	tracker := NewStopTracker(store, zerolog.Nop())

	for _, raw := range []string{"", "done", "COMPLETED", "en_route"} {
		_, err := tracker.UpdateStatus(context.Background(), 1, raw, nil)
		require.ErrorIs(t, err, domain.ErrInvalidInput, "raw %q", raw)
	}
}

func TestUpdateStatusUnknownStop(t *testing.T) {
	tracker := NewStopTracker(repositories.NewMemoryStore(), zerolog.Nop())

	_, err := tracker.UpdateStatus(context.Background(), 42, "arrived", nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatusApproachingMarksBookingEnRoute(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedTrackedRoute(store)
	tracker := NewStopTracker(store, zerolog.Nop())

	stop, err := tracker.UpdateStatus(context.Background(), 1, "approaching", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StopApproaching, stop.Status)
	assert.Nil(t, stop.ActualArrival)

	b, err := store.Bookings().Get(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingEnRoute, b.Status)
}

func TestUpdateStatusArrivedStampsArrival(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedTrackedRoute(store)
	tracker := NewStopTracker(store, zerolog.Nop())

	stop, err := tracker.UpdateStatus(context.Background(), 1, "arrived", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StopArrived, stop.Status)
	require.NotNil(t, stop.ActualArrival)
	assert.WithinDuration(t, time.Now(), *stop.ActualArrival, 5*time.Second)

	b, err := store.Bookings().Get(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingInProgress, b.Status)
}

func TestUpdateStatusCompletedStampsDepartureAndCounts(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedTrackedRoute(store)
	tracker := NewStopTracker(store, zerolog.Nop())

	notes := "left at front desk"
	stop, err := tracker.UpdateStatus(context.Background(), 1, "completed", &notes)
	require.NoError(t, err)
	assert.Equal(t, domain.StopCompleted, stop.Status)
	require.NotNil(t, stop.ActualDeparture)
	require.NotNil(t, stop.Notes)
	assert.Equal(t, notes, *stop.Notes)

	b, err := store.Bookings().Get(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDelivered, b.Status)

	route, err := store.Routes().Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, route.CompletedStops)
}

func TestUpdateStatusFailedMarksBookingFailed(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedTrackedRoute(store)
	tracker := NewStopTracker(store, zerolog.Nop())

	stop, err := tracker.UpdateStatus(context.Background(), 2, "failed", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StopFailed, stop.Status)

	b, err := store.Bookings().Get(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingFailed, b.Status)

	// Failed stops count toward route completion too.
	route, err := store.Routes().Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, route.CompletedStops)
}

func TestUpdateStatusRejectsTerminalStop(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedTrackedRoute(store)
	tracker := NewStopTracker(store, zerolog.Nop())

	_, err := tracker.UpdateStatus(context.Background(), 1, "completed", nil)
	require.NoError(t, err)

	for _, next := range []string{"arrived", "completed", "skipped", "pending"} {
		_, err := tracker.UpdateStatus(context.Background(), 1, next, nil)
		require.Error(t, err, "next %q", next)
	}
}

func TestUpdateStatusCounterDerivedNotIncremented(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedTrackedRoute(store)
	tracker := NewStopTracker(store, zerolog.Nop())

	for _, stopID := range []int64{1, 2, 3} {
		_, err := tracker.UpdateStatus(context.Background(), stopID, "completed", nil)
		require.NoError(t, err)
	}

	route, err := store.Routes().Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, route.CompletedStops)
	assert.LessOrEqual(t, route.CompletedStops, route.TotalStops)
}

func TestUpdateStatusSkippedCountsWithoutDeparture(t *testing.T) {
	store := repositories.NewMemoryStore()
	seedTrackedRoute(store)
	tracker := NewStopTracker(store, zerolog.Nop())

	stop, err := tracker.UpdateStatus(context.Background(), 3, "skipped", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StopSkipped, stop.Status)
	assert.Nil(t, stop.ActualDeparture)

	// A skipped stop leaves the booking alone but still counts as done.
	b, err := store.Bookings().Get(context.Background(), 13)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAssigned, b.Status)

	route, err := store.Routes().Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, route.CompletedStops)
}
