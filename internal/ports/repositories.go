package ports

import (
	"context"
	"time"

	"dispatch-route-service/internal/domain"
)

// Port: booking persistence as seen by route planning.
// Bookings are created elsewhere (order processing) and never deleted here.
type BookingRepository interface {
	// Get returns the booking or a domain.ErrNotFound-wrapping error.
	Get(ctx context.Context, id int64) (*domain.DeliveryBooking, error)
	// ListUnrouted returns the date's bookings that have no route yet and are
	// not in a terminal status.
	ListUnrouted(ctx context.Context, date time.Time) ([]*domain.DeliveryBooking, error)
	// ListByRoute returns the bookings currently linked to a route.
	ListByRoute(ctx context.Context, routeID int64) ([]*domain.DeliveryBooking, error)
	Update(ctx context.Context, b *domain.DeliveryBooking) error
}

// Port: route persistence.
type RouteRepository interface {
	Get(ctx context.Context, id int64) (*domain.Route, error)
	// Create persists a new route and fills in its generated ID.
	Create(ctx context.Context, r *domain.Route) error
	Update(ctx context.Context, r *domain.Route) error
	// DriverIDsWithActiveRoute returns drivers already holding a non-terminal
	// route on the given date.
	DriverIDsWithActiveRoute(ctx context.Context, date time.Time) ([]int64, error)
}

// Port: route stop persistence.
type StopRepository interface {
	Get(ctx context.Context, id int64) (*domain.RouteStop, error)
	// ListByRoute returns a route's stops ordered by sequence position.
	ListByRoute(ctx context.Context, routeID int64) ([]*domain.RouteStop, error)
	Create(ctx context.Context, s *domain.RouteStop) error
	Update(ctx context.Context, s *domain.RouteStop) error
}

// Port: driver lookup and reservation.
type DriverRepository interface {
	Get(ctx context.Context, id int64) (*domain.Driver, error)
	// ListAvailable returns active drivers currently marked available.
	ListAvailable(ctx context.Context) ([]*domain.Driver, error)
	SetStatus(ctx context.Context, id int64, status domain.DriverStatus) error
	// Reserve claims a driver for a date via a conditional insert. It returns
	// false (and no error) when another transaction already holds the driver,
	// so concurrent generation calls cannot double-assign.
	Reserve(ctx context.Context, driverID int64, date time.Time) (bool, error)
	// Release frees a reservation, e.g. when its route is cancelled.
	Release(ctx context.Context, driverID int64, date time.Time) error
}

// Port: vehicle lookup (read-only here).
type VehicleRepository interface {
	Get(ctx context.Context, id int64) (*domain.Vehicle, error)
}

// Port: zone lookup (read-only here).
type ZoneRepository interface {
	Get(ctx context.Context, id int64) (*domain.Zone, error)
}

// Port: location lookup (read-only here).
type LocationRepository interface {
	Get(ctx context.Context, id int64) (*domain.Location, error)
}

// Repos bundles every repository behind one handle so services can run against
// either the ambient connection or a transactional view.
type Repos interface {
	Bookings() BookingRepository
	Routes() RouteRepository
	Stops() StopRepository
	Drivers() DriverRepository
	Vehicles() VehicleRepository
	Zones() ZoneRepository
	Locations() LocationRepository
}

// Store is the persistence boundary. WithinTx runs fn against a transactional
// view of the repositories; returning an error rolls back every write made
// inside fn, so multi-row mutations are all-or-nothing.
type Store interface {
	Repos
	WithinTx(ctx context.Context, fn func(Repos) error) error
}
