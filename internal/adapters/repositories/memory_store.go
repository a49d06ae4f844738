package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/ports"
)

// MemoryStore is an in-memory implementation of ports.Store used by service
// and handler tests. Entities are stored by value, so mutations only become
// visible through Update, matching real repository semantics. WithinTx runs
// the function directly without rollback; tests that need rollback behavior
// exercise the Postgres store.
type MemoryStore struct {
	mu sync.Mutex

	bookings  map[int64]domain.DeliveryBooking
	routes    map[int64]domain.Route
	stops     map[int64]domain.RouteStop
	drivers   map[int64]domain.Driver
	vehicles  map[int64]domain.Vehicle
	zones     map[int64]domain.Zone
	locations map[int64]domain.Location

	reservations map[string]struct{} // "driverID|YYYY-MM-DD"

	nextRouteID int64
	nextStopID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings:     map[int64]domain.DeliveryBooking{},
		routes:       map[int64]domain.Route{},
		stops:        map[int64]domain.RouteStop{},
		drivers:      map[int64]domain.Driver{},
		vehicles:     map[int64]domain.Vehicle{},
		zones:        map[int64]domain.Zone{},
		locations:    map[int64]domain.Location{},
		reservations: map[string]struct{}{},
	}
}

var _ ports.Store = (*MemoryStore)(nil)

// Seed helpers for tests.

func (m *MemoryStore) PutBooking(b domain.DeliveryBooking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
}

func (m *MemoryStore) PutRoute(r domain.Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[r.ID] = r
	if r.ID >= m.nextRouteID {
		m.nextRouteID = r.ID
	}
}

func (m *MemoryStore) PutStop(s domain.RouteStop) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops[s.ID] = s
	if s.ID >= m.nextStopID {
		m.nextStopID = s.ID
	}
}

func (m *MemoryStore) PutDriver(d domain.Driver)     { m.mu.Lock(); defer m.mu.Unlock(); m.drivers[d.ID] = d }
func (m *MemoryStore) PutVehicle(v domain.Vehicle)   { m.mu.Lock(); defer m.mu.Unlock(); m.vehicles[v.ID] = v }
func (m *MemoryStore) PutZone(z domain.Zone)         { m.mu.Lock(); defer m.mu.Unlock(); m.zones[z.ID] = z }
func (m *MemoryStore) PutLocation(l domain.Location) { m.mu.Lock(); defer m.mu.Unlock(); m.locations[l.ID] = l }

func (m *MemoryStore) Bookings() ports.BookingRepository   { return (*memBookings)(m) }
func (m *MemoryStore) Routes() ports.RouteRepository       { return (*memRoutes)(m) }
func (m *MemoryStore) Stops() ports.StopRepository         { return (*memStops)(m) }
func (m *MemoryStore) Drivers() ports.DriverRepository     { return (*memDrivers)(m) }
func (m *MemoryStore) Vehicles() ports.VehicleRepository   { return (*memVehicles)(m) }
func (m *MemoryStore) Zones() ports.ZoneRepository         { return (*memZones)(m) }
func (m *MemoryStore) Locations() ports.LocationRepository { return (*memLocations)(m) }

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(ports.Repos) error) error {
	return fn(m)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type memBookings MemoryStore

func (m *memBookings) Get(ctx context.Context, id int64) (*domain.DeliveryBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	return &b, nil
}

func (m *memBookings) ListUnrouted(ctx context.Context, date time.Time) ([]*domain.DeliveryBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.DeliveryBooking
	for _, b := range m.bookings {
		if b.RouteID == nil && !b.Status.IsTerminal() && sameDay(b.Date, date) {
			c := b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBookings) ListByRoute(ctx context.Context, routeID int64) ([]*domain.DeliveryBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.DeliveryBooking
	for _, b := range m.bookings {
		if b.RouteID != nil && *b.RouteID == routeID {
			c := b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBookings) Update(ctx context.Context, b *domain.DeliveryBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		return fmt.Errorf("booking %d: %w", b.ID, domain.ErrNotFound)
	}
	m.bookings[b.ID] = *b
	return nil
}

type memRoutes MemoryStore

func (m *memRoutes) Get(ctx context.Context, id int64) (*domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return nil, fmt.Errorf("route %d: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

func (m *memRoutes) Create(ctx context.Context, r *domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRouteID++
	r.ID = m.nextRouteID
	m.routes[r.ID] = *r
	return nil
}

func (m *memRoutes) Update(ctx context.Context, r *domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[r.ID]; !ok {
		return fmt.Errorf("route %d: %w", r.ID, domain.ErrNotFound)
	}
	m.routes[r.ID] = *r
	return nil
}

func (m *memRoutes) DriverIDsWithActiveRoute(ctx context.Context, date time.Time) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for _, r := range m.routes {
		if r.DriverID != nil && !r.Status.IsTerminal() && sameDay(r.Date, date) {
			out = append(out, *r.DriverID)
		}
	}
	return out, nil
}

type memStops MemoryStore

func (m *memStops) Get(ctx context.Context, id int64) (*domain.RouteStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stops[id]
	if !ok {
		return nil, fmt.Errorf("stop %d: %w", id, domain.ErrNotFound)
	}
	return &s, nil
}

func (m *memStops) ListByRoute(ctx context.Context, routeID int64) ([]*domain.RouteStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RouteStop
	for _, s := range m.stops {
		if s.RouteID == routeID {
			c := s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (m *memStops) Create(ctx context.Context, s *domain.RouteStop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextStopID++
	s.ID = m.nextStopID
	m.stops[s.ID] = *s
	return nil
}

func (m *memStops) Update(ctx context.Context, s *domain.RouteStop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stops[s.ID]; !ok {
		return fmt.Errorf("stop %d: %w", s.ID, domain.ErrNotFound)
	}
	m.stops[s.ID] = *s
	return nil
}

type memDrivers MemoryStore

func (m *memDrivers) Get(ctx context.Context, id int64) (*domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, fmt.Errorf("driver %d: %w", id, domain.ErrNotFound)
	}
	return &d, nil
}

func (m *memDrivers) ListAvailable(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Driver
	for _, d := range m.drivers {
		if d.Status == domain.DriverAvailable {
			c := d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDrivers) SetStatus(ctx context.Context, id int64, status domain.DriverStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return fmt.Errorf("driver %d: %w", id, domain.ErrNotFound)
	}
	d.Status = status
	m.drivers[id] = d
	return nil
}

func (m *memDrivers) Reserve(ctx context.Context, driverID int64, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reservationKey(driverID, date)
	if _, held := m.reservations[key]; held {
		return false, nil
	}
	m.reservations[key] = struct{}{}
	return true, nil
}

func (m *memDrivers) Release(ctx context.Context, driverID int64, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reservations, reservationKey(driverID, date))
	return nil
}

func reservationKey(driverID int64, date time.Time) string {
	return fmt.Sprintf("%d|%s", driverID, date.Format("2006-01-02"))
}

type memVehicles MemoryStore

func (m *memVehicles) Get(ctx context.Context, id int64) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle %d: %w", id, domain.ErrNotFound)
	}
	return &v, nil
}

type memZones MemoryStore

func (m *memZones) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok {
		return nil, fmt.Errorf("zone %d: %w", id, domain.ErrNotFound)
	}
	return &z, nil
}

type memLocations MemoryStore

func (m *memLocations) Get(ctx context.Context, id int64) (*domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locations[id]
	if !ok {
		return nil, fmt.Errorf("location %d: %w", id, domain.ErrNotFound)
	}
	return &l, nil
}
