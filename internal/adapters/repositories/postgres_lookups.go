package repositories

import (
	"context"
	"database/sql"

	"dispatch-route-service/internal/domain"
)

// Read-only lookups for entities owned by other subsystems.

type pgVehicles struct {
	q queryer
}

func (r *pgVehicles) Get(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query := `SELECT id, name, plate, capacity_kg, active FROM vehicles WHERE id = $1`

	var v domain.Vehicle
	err := r.q.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &v.Plate, &v.CapacityKg, &v.Active)
	if err != nil {
		return nil, notFound(err, "vehicle", id)
	}
	return &v, nil
}

type pgZones struct {
	q queryer
}

func (r *pgZones) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	query := `SELECT id, name, center_lat, center_lng FROM zones WHERE id = $1`

	var (
		z        domain.Zone
		lat, lng sql.NullFloat64
	)
	err := r.q.QueryRowContext(ctx, query, id).Scan(&z.ID, &z.Name, &lat, &lng)
	if err != nil {
		return nil, notFound(err, "zone", id)
	}
	z.Center = coordsPtr(lat, lng)
	return &z, nil
}

type pgLocations struct {
	q queryer
}

func (r *pgLocations) Get(ctx context.Context, id int64) (*domain.Location, error) {
	query := `SELECT id, name, address, lat, lng FROM locations WHERE id = $1`

	var (
		l        domain.Location
		lat, lng sql.NullFloat64
	)
	err := r.q.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.Address, &lat, &lng)
	if err != nil {
		return nil, notFound(err, "location", id)
	}
	l.Coords = coordsPtr(lat, lng)
	return &l, nil
}
