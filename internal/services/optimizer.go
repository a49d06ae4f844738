package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/geo"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
)

const (
	// lateWindowPenaltyKm is added to a candidate's scored distance when its
	// projected arrival exceeds the stop's delivery window end. A soft bias:
	// a late stop is deprioritized, never excluded from the route.
	lateWindowPenaltyKm = 50.0

	// defaultStartTime is used when a route has no planned departure.
	defaultStartTime = "08:00"

	// defaultServiceMins is the assumed on-site time per stop.
	defaultServiceMins = 5
)

// fallbackStartCoords anchors routes whose start location has no coordinates.
var fallbackStartCoords = domain.Coordinates{Lat: 43.6532, Lng: -79.3832}

// PlanStop is the optimizer's view of one stop.
type PlanStop struct {
	ID          int64
	Coords      *domain.Coordinates
	WindowEnd   *string // "HH:MM"
	ServiceMins int
}

// SequencedStop is one placed stop in an optimized ordering.
type SequencedStop struct {
	PlanStop
	Seq                int
	DistanceFromPrevKm float64
	EstimatedArrival   string // "HH:MM"
	EstimatedDeparture string // "HH:MM"
}

type SequenceResult struct {
	Stops           []SequencedStop
	TotalDistanceKm float64
	TotalDuration   int // minutes, drive estimates plus service time
}

// SequenceStops orders stops with a greedy nearest-neighbor heuristic.
//
// At each step the closest unplaced stop wins; a candidate whose projected
// arrival would miss its window end carries lateWindowPenaltyKm on its score.
// Stops without coordinates are not distance-scored and are only chosen once
// no scored candidate remains, taking zero distance and leaving the current
// position unchanged. The algorithm minimizes the immediate leg, not the
// global tour (no VRP solving); determinism and explainability win over
// optimality.
func SequenceStops(start domain.Coordinates, startTime string, stops []PlanStop) (SequenceResult, error) {
	if len(stops) <= 1 {
		res := SequenceResult{Stops: make([]SequencedStop, 0, len(stops))}
		for i, s := range stops {
			res.Stops = append(res.Stops, SequencedStop{
				PlanStop:           s,
				Seq:                i + 1,
				EstimatedArrival:   startTime,
				EstimatedDeparture: startTime,
			})
		}
		return res, nil
	}

	startMins, err := geo.TimeToMinutes(startTime)
	if err != nil {
		return SequenceResult{}, fmt.Errorf("sequence stops: start time: %w", err)
	}

	current := start
	currentMins := startMins
	remaining := make([]PlanStop, len(stops))
	copy(remaining, stops)

	out := SequenceResult{Stops: make([]SequencedStop, 0, len(stops))}

	for len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.MaxFloat64
		bestDist := 0.0
		firstUnscored := -1

		for i, s := range remaining {
			if s.Coords == nil {
				if firstUnscored == -1 {
					firstUnscored = i
				}
				continue
			}

			dist := geo.DistanceKm(current, *s.Coords)
			score := dist

			if s.WindowEnd != nil {
				if windowMins, werr := geo.TimeToMinutes(*s.WindowEnd); werr == nil {
					projected := currentMins + geo.EstimateDriveMinutes(dist)
					if projected > windowMins {
						score += lateWindowPenaltyKm
					}
				}
			}

			if score < bestScore {
				bestScore = score
				bestIdx = i
				bestDist = dist
			}
		}

		pick := bestIdx
		dist := bestDist
		if pick == -1 {
			// Only coordinate-less stops remain; place them in input order.
			pick = firstUnscored
			dist = 0
		}
		chosen := remaining[pick]
		remaining = append(remaining[:pick], remaining[pick+1:]...)

		arrivalMins := currentMins + geo.EstimateDriveMinutes(dist)
		departMins := arrivalMins + chosen.ServiceMins

		out.Stops = append(out.Stops, SequencedStop{
			PlanStop:           chosen,
			Seq:                len(out.Stops) + 1,
			DistanceFromPrevKm: dist,
			EstimatedArrival:   geo.MinutesToTime(arrivalMins),
			EstimatedDeparture: geo.MinutesToTime(departMins),
		})

		out.TotalDistanceKm += dist
		if chosen.Coords != nil {
			current = *chosen.Coords
		}
		currentMins = departMins
	}

	out.TotalDuration = currentMins - startMins
	return out, nil
}

// Optimizer re-sequences stored routes and persists the result.
type Optimizer struct {
	store ports.Store
	log   zerolog.Logger
}

func NewOptimizer(store ports.Store, log zerolog.Logger) *Optimizer {
	return &Optimizer{store: store, log: log.With().Str("component", "optimizer").Logger()}
}

type OptimizeResult struct {
	RouteID         int64
	Optimized       bool
	Message         string
	StopCount       int
	OriginalKm      float64
	OptimizedKm     float64
	DistanceSavedKm float64
	TimeSavedMins   int
}

// Optimize loads a route's stops, re-sequences them from the route's start
// point, and persists the new order together with per-stop ETAs and route
// aggregates. Savings are clamped at zero: a heuristic shuffle that happens to
// lengthen the tour is persisted but never reported as negative.
func (o *Optimizer) Optimize(ctx context.Context, routeID int64) (res *OptimizeResult, err error) {
	defer obs.Time(ctx, o.log, "optimizer.Optimize")(&err)

	route, err := o.store.Routes().Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("optimize: route %d: %w", routeID, err)
	}
	if route.Status.IsTerminal() {
		return nil, fmt.Errorf("optimize: route %d has status %q: %w",
			routeID, route.Status, domain.ErrInvalidTransition)
	}

	stops, err := o.store.Stops().ListByRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("optimize: list stops for route %d: %w", routeID, err)
	}
	if len(stops) <= 1 {
		return &OptimizeResult{
			RouteID:   routeID,
			Optimized: false,
			Message:   "no optimization needed",
			StopCount: len(stops),
		}, nil
	}

	start, startTime, err := o.routeStart(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("optimize: route %d: %w", routeID, err)
	}

	originalKm, originalMins := tourMetrics(start, stops)

	plan := make([]PlanStop, 0, len(stops))
	for _, s := range stops {
		plan = append(plan, PlanStop{
			ID:          s.ID,
			Coords:      s.Coords,
			WindowEnd:   s.WindowEnd,
			ServiceMins: s.ServiceMins,
		})
	}

	seq, err := SequenceStops(start, startTime, plan)
	if err != nil {
		return nil, fmt.Errorf("optimize: route %d: %w", routeID, err)
	}

	byID := make(map[int64]*domain.RouteStop, len(stops))
	for _, s := range stops {
		byID[s.ID] = s
	}

	now := time.Now()
	err = o.store.WithinTx(ctx, func(r ports.Repos) error {
		for _, placed := range seq.Stops {
			stop := byID[placed.ID]
			stop.Seq = placed.Seq
			stop.DistanceFromPrevKm = placed.DistanceFromPrevKm
			arr, dep := placed.EstimatedArrival, placed.EstimatedDeparture
			stop.EstimatedArrival = &arr
			stop.EstimatedDeparture = &dep
			if err := r.Stops().Update(ctx, stop); err != nil {
				return fmt.Errorf("update stop %d: %w", stop.ID, err)
			}

			booking, err := r.Bookings().Get(ctx, stop.BookingID)
			if err != nil {
				return fmt.Errorf("booking %d: %w", stop.BookingID, err)
			}
			order := placed.Seq
			booking.RouteOrder = &order
			if err := r.Bookings().Update(ctx, booking); err != nil {
				return fmt.Errorf("update booking %d: %w", booking.ID, err)
			}
		}

		route.TotalDistanceKm = seq.TotalDistanceKm
		route.TotalDuration = seq.TotalDuration
		route.OptimizedAt = &now
		if route.Status == domain.RoutePlanned {
			route.Status = domain.RouteOptimized
		}
		return r.Routes().Update(ctx, route)
	})
	if err != nil {
		return nil, fmt.Errorf("optimize: persist route %d: %w", routeID, err)
	}

	distanceSaved := math.Max(0, originalKm-seq.TotalDistanceKm)
	timeSaved := originalMins - seq.TotalDuration
	if timeSaved < 0 {
		timeSaved = 0
	}

	o.log.Info().
		Int64("route_id", routeID).
		Int("stops", len(stops)).
		Float64("original_km", originalKm).
		Float64("optimized_km", seq.TotalDistanceKm).
		Msg("route optimized")

	return &OptimizeResult{
		RouteID:         routeID,
		Optimized:       true,
		Message:         "route optimized",
		StopCount:       len(stops),
		OriginalKm:      originalKm,
		OptimizedKm:     seq.TotalDistanceKm,
		DistanceSavedKm: distanceSaved,
		TimeSavedMins:   timeSaved,
	}, nil
}

// routeStart resolves the route's departure coordinates and time, falling
// back to fixed constants when the start location has no coordinates.
func (o *Optimizer) routeStart(ctx context.Context, route *domain.Route) (domain.Coordinates, string, error) {
	start := fallbackStartCoords
	loc, err := o.store.Locations().Get(ctx, route.StartLocationID)
	if err != nil {
		return domain.Coordinates{}, "", fmt.Errorf("start location %d: %w", route.StartLocationID, err)
	}
	if loc.Coords != nil {
		start = *loc.Coords
	}

	startTime := route.StartTime
	if startTime == "" {
		startTime = defaultStartTime
	}
	return start, startTime, nil
}

// tourMetrics walks stops in their current order and returns the cumulative
// distance and estimated duration, for before/after comparison.
func tourMetrics(start domain.Coordinates, stops []*domain.RouteStop) (float64, int) {
	current := start
	totalKm := 0.0
	totalMins := 0

	for _, s := range stops {
		dist := 0.0
		if s.Coords != nil {
			dist = geo.DistanceKm(current, *s.Coords)
			current = *s.Coords
		}
		totalKm += dist
		totalMins += geo.EstimateDriveMinutes(dist) + s.ServiceMins
	}

	return totalKm, totalMins
}
