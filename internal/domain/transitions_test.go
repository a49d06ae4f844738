package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteTransitions(t *testing.T) {
	allowed := []struct{ from, to RouteStatus }{
		{RoutePlanned, RouteOptimized},
		{RoutePlanned, RouteAssigned},
		{RoutePlanned, RouteInProgress}, // forward jump skipping optimization
		{RoutePlanned, RouteCancelled},
		{RouteOptimized, RouteAssigned},
		{RouteOptimized, RouteInProgress},
		{RouteAssigned, RouteInProgress},
		{RouteAssigned, RouteCancelled},
		{RouteInProgress, RouteCompleted},
		{RouteInProgress, RouteCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to RouteStatus }{
		{RouteOptimized, RoutePlanned}, // never backwards
		{RouteAssigned, RouteOptimized},
		{RouteInProgress, RoutePlanned},
		{RoutePlanned, RouteCompleted}, // completion requires being underway
		{RouteCompleted, RouteCancelled},
		{RouteCancelled, RoutePlanned},
		{RouteCompleted, RouteInProgress},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.True(t, RouteCompleted.IsTerminal())
	assert.True(t, RouteCancelled.IsTerminal())
	assert.False(t, RouteInProgress.IsTerminal())
}

func TestStopTransitions(t *testing.T) {
	// Intermediate states may be skipped on the way forward.
	assert.True(t, StopPending.CanTransitionTo(StopCompleted))
	assert.True(t, StopPending.CanTransitionTo(StopFailed))
	assert.True(t, StopApproaching.CanTransitionTo(StopSkipped))
	assert.True(t, StopArrived.CanTransitionTo(StopCompleted))

	// Terminal states accept nothing, and nothing moves backwards.
	for _, terminal := range []StopStatus{StopCompleted, StopSkipped, StopFailed} {
		for _, next := range []StopStatus{StopPending, StopApproaching, StopArrived, StopCompleted, StopSkipped, StopFailed} {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
	assert.False(t, StopArrived.CanTransitionTo(StopApproaching))
	assert.False(t, StopArrived.CanTransitionTo(StopPending))
}

func TestParseStopStatus(t *testing.T) {
	for _, raw := range []string{"pending", "approaching", "arrived", "completed", "skipped", "failed"} {
		s, ok := ParseStopStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, StopStatus(raw), s)
	}
	for _, raw := range []string{"", "done", "Completed", "in_progress"} {
		_, ok := ParseStopStatus(raw)
		assert.False(t, ok, raw)
	}
}

func TestStopCountsAsDone(t *testing.T) {
	assert.True(t, StopCompleted.CountsAsDone())
	assert.True(t, StopSkipped.CountsAsDone())
	assert.True(t, StopFailed.CountsAsDone())
	assert.False(t, StopArrived.CountsAsDone())
	assert.False(t, StopPending.CountsAsDone())
}
