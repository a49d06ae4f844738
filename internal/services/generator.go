package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
)

const (
	// maxStopsPerRoute bounds per-route size and per-call nearest-neighbor
	// cost; zone groups larger than this are split across routes.
	maxStopsPerRoute = 15

	// routeSequence names the counter behind human-readable route numbers.
	routeSequence = "route_number"

	// unzonedKey buckets bookings that carry no zone reference.
	unzonedKey int64 = 0
)

// Generator materializes unassigned bookings into driver-assigned routes.
type Generator struct {
	store ports.Store
	seq   ports.SequenceGenerator
	log   zerolog.Logger
}

func NewGenerator(store ports.Store, seq ports.SequenceGenerator, log zerolog.Logger) *Generator {
	return &Generator{
		store: store,
		seq:   seq,
		log:   log.With().Str("component", "generator").Logger(),
	}
}

// RouteSummary describes one route created by AutoGenerate.
type RouteSummary struct {
	RouteID     int64
	RouteNumber string
	Zone        string
	StopCount   int
	DriverName  *string
}

type GenerateResult struct {
	RoutesCreated    int
	BookingsAssigned int
	DriversRemaining int
	Routes           []RouteSummary
}

// AutoGenerate groups the date's unrouted bookings by zone, splits each group
// into chunks of at most maxStopsPerRoute stops, and creates one route per
// chunk, claiming one available driver per route on a first-available basis.
// Stops are created in booking input order (sequence 1..N); optimization is a
// separate step. All writes for the call commit atomically.
func (g *Generator) AutoGenerate(ctx context.Context, date time.Time, locationID int64) (res *GenerateResult, err error) {
	defer obs.Time(ctx, g.log, "generator.AutoGenerate")(&err)

	if locationID == 0 {
		return nil, fmt.Errorf("auto generate: location id is required: %w", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		date = time.Now()
	}
	date = date.Truncate(24 * time.Hour)

	loc, err := g.store.Locations().Get(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("auto generate: location %d: %w", locationID, err)
	}

	bookings, err := g.store.Bookings().ListUnrouted(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("auto generate: list unrouted bookings: %w", err)
	}
	if len(bookings) == 0 {
		return &GenerateResult{Routes: []RouteSummary{}}, nil
	}

	drivers, err := g.availableDrivers(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("auto generate: %w", err)
	}

	groups := lo.GroupBy(bookings, func(b *domain.DeliveryBooking) int64 {
		if b.ZoneID == nil {
			return unzonedKey
		}
		return *b.ZoneID
	})

	// Deterministic zone order keeps route numbering stable across runs.
	zoneIDs := lo.Keys(groups)
	slices.Sort(zoneIDs)

	result := &GenerateResult{Routes: []RouteSummary{}}
	nextDriver := 0
	claimed := 0

	err = g.store.WithinTx(ctx, func(r ports.Repos) error {
		for _, zoneID := range zoneIDs {
			zone, err := g.zoneFor(ctx, r, zoneID)
			if err != nil {
				return err
			}

			for _, chunk := range lo.Chunk(groups[zoneID], maxStopsPerRoute) {
				driver, err := g.claimDriver(ctx, r, drivers, &nextDriver, date)
				if err != nil {
					return err
				}
				if driver != nil {
					claimed++
				}

				route, err := g.createRoute(ctx, r, date, loc, zone, chunk, driver)
				if err != nil {
					return err
				}

				summary := RouteSummary{
					RouteID:     route.ID,
					RouteNumber: route.RouteNumber,
					Zone:        zoneName(zone),
					StopCount:   len(chunk),
				}
				if driver != nil {
					name := driver.Name
					summary.DriverName = &name
				}

				result.Routes = append(result.Routes, summary)
				result.RoutesCreated++
				result.BookingsAssigned += len(chunk)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("auto generate: %w", err)
	}

	// Remaining counts drivers this call left unclaimed; a driver whose
	// reservation was lost to a concurrent call was never ours to spend.
	result.DriversRemaining = len(drivers) - claimed

	g.log.Info().
		Str("date", date.Format("2006-01-02")).
		Int("routes", result.RoutesCreated).
		Int("bookings", result.BookingsAssigned).
		Int("drivers_remaining", result.DriversRemaining).
		Msg("routes generated")

	return result, nil
}

// availableDrivers returns active, available drivers not already holding a
// non-terminal route on the date.
func (g *Generator) availableDrivers(ctx context.Context, date time.Time) ([]*domain.Driver, error) {
	drivers, err := g.store.Drivers().ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available drivers: %w", err)
	}

	busyIDs, err := g.store.Routes().DriverIDsWithActiveRoute(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list busy drivers: %w", err)
	}
	busy := make(map[int64]struct{}, len(busyIDs))
	for _, id := range busyIDs {
		busy[id] = struct{}{}
	}

	free := lo.Filter(drivers, func(d *domain.Driver, _ int) bool {
		_, held := busy[d.ID]
		return !held && d.Active()
	})
	return free, nil
}

// claimDriver reserves the next free driver for the date. The reservation is a
// conditional insert, so a concurrent generation call claiming the same driver
// loses cleanly and this call moves on to the next candidate. Returns nil when
// no driver is left; the route is still created, just unassigned.
func (g *Generator) claimDriver(
	ctx context.Context,
	r ports.Repos,
	drivers []*domain.Driver,
	next *int,
	date time.Time,
) (*domain.Driver, error) {
	for *next < len(drivers) {
		d := drivers[*next]
		*next++

		reserved, err := r.Drivers().Reserve(ctx, d.ID, date)
		if err != nil {
			return nil, fmt.Errorf("reserve driver %d: %w", d.ID, err)
		}
		if reserved {
			return d, nil
		}
	}
	return nil, nil
}

func (g *Generator) createRoute(
	ctx context.Context,
	r ports.Repos,
	date time.Time,
	loc *domain.Location,
	zone *domain.Zone,
	chunk []*domain.DeliveryBooking,
	driver *domain.Driver,
) (*domain.Route, error) {
	n, err := g.seq.Next(ctx, routeSequence)
	if err != nil {
		return nil, fmt.Errorf("next route number: %w", err)
	}

	route := &domain.Route{
		RouteNumber:     fmt.Sprintf("RT-%06d", n),
		Date:            date,
		Status:          domain.RoutePlanned,
		StartLocationID: loc.ID,
		StartTime:       defaultStartTime,
		TotalStops:      len(chunk),
		TotalWeightKg: lo.SumBy(chunk, func(b *domain.DeliveryBooking) float64 {
			return b.WeightKg
		}),
	}
	if driver != nil {
		route.DriverID = &driver.ID
	}

	if err := r.Routes().Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route %s: %w", route.RouteNumber, err)
	}

	for i, b := range chunk {
		coords := b.Coords
		if coords == nil && zone != nil {
			// Zone center stands in for bookings without their own coordinates.
			coords = zone.Center
		}

		stop := &domain.RouteStop{
			RouteID:     route.ID,
			BookingID:   b.ID,
			Seq:         i + 1,
			Address:     b.Address,
			Coords:      coords,
			WindowEnd:   b.WindowEnd,
			ServiceMins: defaultServiceMins,
			Status:      domain.StopPending,
		}
		if err := r.Stops().Create(ctx, stop); err != nil {
			return nil, fmt.Errorf("create stop for booking %d: %w", b.ID, err)
		}

		order := i + 1
		b.RouteID = &route.ID
		b.RouteOrder = &order
		b.Status = domain.BookingAssigned
		if b.DriverID == nil && driver != nil {
			b.DriverID = &driver.ID
		}
		if err := r.Bookings().Update(ctx, b); err != nil {
			return nil, fmt.Errorf("link booking %d to route %s: %w", b.ID, route.RouteNumber, err)
		}
	}

	return route, nil
}

// zoneFor loads the zone record for a group key; the unzoned bucket and
// dangling zone references both yield nil.
func (g *Generator) zoneFor(ctx context.Context, r ports.Repos, zoneID int64) (*domain.Zone, error) {
	if zoneID == unzonedKey {
		return nil, nil
	}
	zone, err := r.Zones().Get(ctx, zoneID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("zone %d: %w", zoneID, err)
	}
	return zone, nil
}

func zoneName(zone *domain.Zone) string {
	if zone == nil {
		return "unzoned"
	}
	return zone.Name
}
